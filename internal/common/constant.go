package common

// AuthorizationHeaderName carries the bearer credential on task requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"

// DateLayout is the wire format of task due dates.
const DateLayout = "2006-01-02"
