package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Session layer.
	ErrBadResumeToken = "E_BAD_RESUME_TOKEN"
	ErrNameTaken      = "E_NAME_TAKEN"

	// Traffic.
	ErrRateLimit = "E_RATE_LIMIT"

	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadResumeToken:  {},
	ErrNameTaken:       {},
	ErrRateLimit:       {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
