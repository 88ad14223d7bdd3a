package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/smartystreets/goconvey/convey"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestTokenProvider(t *testing.T) {
	Convey("Given a token provider", t, func() {
		Convey("An empty provider has no credential", func() {
			p := NewTokenProvider("", "")
			_, err := p.AccessToken()
			So(errors.Is(err, ErrNoCredential), ShouldBeTrue)
			So(p.IsAuthorized(), ShouldBeFalse)
		})

		Convey("A valid JWT is returned as is", func() {
			token := signedToken(t, time.Now().Add(time.Hour))
			p := NewTokenProvider(token, "refresh")

			got, err := p.AccessToken()
			So(err, ShouldBeNil)
			So(got, ShouldEqual, token)
			So(p.IsAuthorized(), ShouldBeTrue)
		})

		Convey("An expired JWT is rejected locally", func() {
			p := NewTokenProvider(signedToken(t, time.Now().Add(-time.Hour)), "refresh")

			_, err := p.AccessToken()
			So(errors.Is(err, ErrTokenExpired), ShouldBeTrue)
			So(p.IsAuthorized(), ShouldBeFalse)
		})

		Convey("An opaque token is passed through without expiry checks", func() {
			p := NewTokenProvider("opaque-session-key", "")

			got, err := p.AccessToken()
			So(err, ShouldBeNil)
			So(got, ShouldEqual, "opaque-session-key")
		})

		Convey("UpdateTokens swaps the credential", func() {
			p := NewTokenProvider("", "")
			So(p.IsAuthorized(), ShouldBeFalse)

			p.UpdateTokens("fresh-token", "fresh-refresh")
			So(p.IsAuthorized(), ShouldBeTrue)

			Convey("Clear drops it again", func() {
				p.Clear()
				So(p.IsAuthorized(), ShouldBeFalse)
			})
		})
	})
}
