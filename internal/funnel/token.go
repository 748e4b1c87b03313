package funnel

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ContinueParam is the query parameter that carries a continuation token.
const ContinueParam = "continue"

// Token is a decoded continuation token. Tokens carry no signature and no
// expiry; anyone holding one can resume that session.
type Token struct {
	SessionID string
	Step      int
	IssuedAt  time.Time
}

// EncodeToken returns base64("sessionID|step|unixMillis").
func EncodeToken(sessionID string, step int, at time.Time) string {
	raw := fmt.Sprintf("%s|%d|%d", sessionID, step, at.UnixMilli())
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeToken parses a token produced by EncodeToken. Spaces are read as
// '+' so tokens that travelled through an unescaped query string still
// decode, and missing padding is tolerated.
func DecodeToken(token string) (Token, error) {
	token = strings.ReplaceAll(strings.TrimSpace(token), " ", "+")
	if token == "" {
		return Token{}, ErrMalformedToken
	}

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(token, "="))
		if err != nil {
			return Token{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
	}

	parts := strings.Split(string(raw), "|")
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Token{}, ErrMalformedToken
	}

	// Only the three parts are required. A step without leading digits
	// decodes as 0, which no screen accepts, and an unreadable timestamp
	// leaves IssuedAt zero.
	tok := Token{SessionID: parts[0]}
	if n, ok := leadingInt(parts[1]); ok {
		tok.Step = n
	}
	if millis, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
		tok.IssuedAt = time.UnixMilli(millis)
	}
	return tok, nil
}
