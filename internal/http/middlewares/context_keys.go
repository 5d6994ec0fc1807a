package middlewares

const (
	CtxRequestID  = "request_id"
	ctxUserKey    = "session.user"
	ctxSessionKey = "session.record"
)
