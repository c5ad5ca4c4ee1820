package utils

const (
	MessagesTable = "void_messages"
	RestPath      = "/rest/v1/"
	AuthTokenPath = "/auth/v1/token"

	APIKeyHeader        = "apikey"
	AuthorizationHeader = "Authorization"
	PreferHeader        = "Prefer"
	ContentRangeHeader  = "Content-Range"

	PreferCountExact    = "count=exact"
	PreferReturnMinimal = "return=minimal"

	RedisMessageKeyPrefix  = "void:message:"
	RedisMessagesSetKey    = "void:messages"
	RedisVerifiedSetKey    = "void:messages:verified"
	RedisSessionKeyPrefix  = "void:session:"
	SilentVoidPlaceholder  = "The void is silent..."
	LoadingPlaceholder     = "..."
	SessionStorageKeyFmt   = "sb-%s-auth-token"
	DefaultSessionFileName = "session.json"
)
