package service

var (
	VerifyContent = verifyContent
	EscapeQuery   = escapeQuery
)
