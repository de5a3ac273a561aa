package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackRawFraming(t *testing.T) {
	// The generic OnCallback endpoint leaves Unique empty and Data framed.
	key, payload := ParseCallback(&tele.Callback{Data: "\fbuy|gmail"})
	assert.Equal(t, "buy", key)
	assert.Equal(t, "gmail", payload)

	key, payload = ParseCallback(&tele.Callback{Data: "\fqty_plus"})
	assert.Equal(t, "qty_plus", key)
	assert.Empty(t, payload)
}

func TestParseCallbackPreParsed(t *testing.T) {
	key, payload := ParseCallback(&tele.Callback{Unique: "buy", Data: "gmail"})
	assert.Equal(t, "buy", key)
	assert.Equal(t, "gmail", payload)
}

func TestParseCallbackNil(t *testing.T) {
	key, payload := ParseCallback(nil)
	assert.Empty(t, key)
	assert.Empty(t, payload)
}

type panicContext struct{ tele.Context }

func (panicContext) Update() tele.Update { return tele.Update{ID: 3} }
func (panicContext) Sender() *tele.User  { return &tele.User{ID: 4} }

func TestRecoverMiddlewareSwallowsPanic(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error {
		panic("boom")
	})
	assert.NotPanics(t, func() {
		assert.NoError(t, h(panicContext{}))
	})
}
