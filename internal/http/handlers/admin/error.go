package admin

import (
	handlershared "github.com/bookvine/internal/http/handlers/shared"
)

var (
	requestLog   = handlershared.RequestLog
	respondError = handlershared.RespondError
)
