package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dichenko/myshadow/internal/apperror"
)

// TelegramUser is the profile carried inside a Mini App init payload.
type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// VerifyInitData validates a Mini App initData payload against the bot
// token and returns the embedded user.
//
// The check is the one defined by the Bot API: sort all key=value pairs
// except hash, join with newlines, and compare the received hash with
// HMAC-SHA256(data, HMAC-SHA256(botToken, "WebAppData")). Payloads with
// an auth_date older than maxAge are rejected as stale.
func VerifyInitData(initData, botToken string, maxAge time.Duration, now time.Time) (*TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, apperror.Unauthorized("malformed init data")
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, apperror.Unauthorized("init data has no hash")
	}
	values.Del("hash")

	pairs := make([]string, 0, len(values))
	for k := range values {
		pairs = append(pairs, k+"="+values.Get(k))
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	secret := hmacSHA256([]byte("WebAppData"), []byte(botToken))
	expected := hex.EncodeToString(hmacSHA256(secret, []byte(checkString)))
	if !hmac.Equal([]byte(expected), []byte(gotHash)) {
		return nil, apperror.Unauthorized("init data signature mismatch")
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, apperror.Unauthorized("init data has no auth_date")
	}
	if maxAge > 0 && now.Sub(time.Unix(authDate, 0)) > maxAge {
		return nil, apperror.Unauthorized("init data is stale")
	}

	var user TelegramUser
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil || user.ID == 0 {
		return nil, apperror.Unauthorized("init data carries no user")
	}
	return &user, nil
}

func hmacSHA256(key, msg []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	return mac.Sum(nil)
}
