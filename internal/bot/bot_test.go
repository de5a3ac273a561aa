package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/bdnetwork/ordersbot/internal/catalog"
	"github.com/bdnetwork/ordersbot/internal/flow"
	"github.com/bdnetwork/ordersbot/internal/storage"
)

// fakeContext implements the subset of tele.Context the handlers touch.
// Unused interface methods panic via the embedded nil interface, which makes
// accidental new dependencies visible in tests.
type fakeContext struct {
	tele.Context

	user     *tele.User
	text     string
	callback *tele.Callback
	message  *tele.Message
	store    map[string]any

	sent      []sentMessage
	edited    []sentMessage
	responses []*tele.CallbackResponse
}

type sentMessage struct {
	text   string
	markup *tele.ReplyMarkup
}

func newFakeContext(userID int64) *fakeContext {
	return &fakeContext{
		user:    &tele.User{ID: userID, FirstName: "Rahim", LastName: "Uddin"},
		message: &tele.Message{ID: 77, Chat: &tele.Chat{ID: userID}},
		store:   make(map[string]any),
	}
}

func (c *fakeContext) Sender() *tele.User       { return c.user }
func (c *fakeContext) Chat() *tele.Chat         { return c.message.Chat }
func (c *fakeContext) Message() *tele.Message   { return c.message }
func (c *fakeContext) Text() string             { return c.text }
func (c *fakeContext) Callback() *tele.Callback { return c.callback }
func (c *fakeContext) Update() tele.Update      { return tele.Update{ID: 1, Message: c.message} }

func (c *fakeContext) Get(key string) any      { return c.store[key] }
func (c *fakeContext) Set(key string, val any) { c.store[key] = val }

func (c *fakeContext) Send(what interface{}, opts ...interface{}) error {
	c.sent = append(c.sent, captureMessage(what, opts...))
	return nil
}

func (c *fakeContext) EditOrSend(what interface{}, opts ...interface{}) error {
	c.edited = append(c.edited, captureMessage(what, opts...))
	return nil
}

func (c *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	if len(resp) == 0 {
		c.responses = append(c.responses, &tele.CallbackResponse{})
		return nil
	}
	c.responses = append(c.responses, resp...)
	return nil
}

func captureMessage(what interface{}, opts ...interface{}) sentMessage {
	msg := sentMessage{text: fmt.Sprint(what)}
	for _, o := range opts {
		if m, ok := o.(*tele.ReplyMarkup); ok {
			msg.markup = m
		}
	}
	return msg
}

func (c *fakeContext) lastSent(t *testing.T) sentMessage {
	t.Helper()
	require.NotEmpty(t, c.sent)
	return c.sent[len(c.sent)-1]
}

func (c *fakeContext) lastEdited(t *testing.T) sentMessage {
	t.Helper()
	require.NotEmpty(t, c.edited)
	return c.edited[len(c.edited)-1]
}

type fakeNotifier struct {
	texts   []string
	relayed []tele.Editable
}

func (f *fakeNotifier) NotifyAdmin(_ context.Context, text string) {
	f.texts = append(f.texts, text)
}

func (f *fakeNotifier) RelayFile(_ context.Context, msg tele.Editable) {
	f.relayed = append(f.relayed, msg)
}

type staticErrors uint64

func (s staticErrors) ErrorCount() uint64 { return uint64(s) }

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Product{
		{Slug: "gmail", Label: "Fresh Gmail", Price: 9},
		{Slug: "talkatone", Label: "Talkatone", Price: 28},
		{Slug: "textnow", Label: "TextNow", Price: 25},
		{Slug: "gvoice", Label: "Google Voice", Price: 200},
	})
}

func newTestBot() (*Bot, *fakeNotifier, storage.Ledger) {
	ledger := storage.NewMemoryLedger()
	notifier := &fakeNotifier{}
	b := New(Options{
		Catalog:       testCatalog(),
		Ledger:        ledger,
		Flows:         flow.NewStore(flow.NewMachine(100)),
		Notifier:      notifier,
		Errors:        staticErrors(2),
		AdminUsername: "@BD_Network_Spport",
		ChannelURL:    "https://t.me/Bd_Network_24",
		MinWithdrawal: 100,
	})
	return b, notifier, ledger
}

// tapCallback simulates a real inline button tap. Telebot only strips the
// \f<unique>|<payload> framing for per-unique endpoints; on the generic
// OnCallback route Unique stays empty and Data keeps the framing, so the
// fake delivers that raw shape.
func tapCallback(b *Bot, c *fakeContext, unique, data string) error {
	raw := "\f" + unique
	if data != "" {
		raw += "|" + data
	}
	c.callback = &tele.Callback{Data: raw}
	var err error
	switch unique {
	case cbBuy:
		err = b.Buy(c)
	case cbQtyMinus:
		err = b.QuantityMinus(c)
	case cbQtyPlus:
		err = b.QuantityPlus(c)
	case cbQtyConfirm:
		err = b.QuantityConfirm(c)
	}
	c.callback = nil
	return err
}

func TestStartShowsMenu(t *testing.T) {
	b, _, ledger := newTestBot()
	c := newFakeContext(10)

	require.NoError(t, b.Start(c))

	msg := c.lastSent(t)
	assert.Equal(t, "🔥 Welcome to BD Network Bot", msg.text)
	require.NotNil(t, msg.markup)
	require.Len(t, msg.markup.ReplyKeyboard, 3)
	assert.Equal(t, MenuAccountSell, msg.markup.ReplyKeyboard[0][0].Text)
	assert.Equal(t, MenuSupport, msg.markup.ReplyKeyboard[2][0].Text)

	balance, err := ledger.Balance(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestAccountSellListsCatalog(t *testing.T) {
	b, _, _ := newTestBot()
	c := newFakeContext(10)

	require.NoError(t, b.AccountSell(c))

	msg := c.lastSent(t)
	assert.Equal(t, "🛒 Select the account type you want to buy:", msg.text)
	require.NotNil(t, msg.markup)
	require.Len(t, msg.markup.InlineKeyboard, 4)
	assert.Equal(t, "Fresh Gmail – 9৳", msg.markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "Google Voice – 200৳", msg.markup.InlineKeyboard[3][0].Text)
}

func TestPurchaseFlow(t *testing.T) {
	b, notifier, ledger := newTestBot()
	c := newFakeContext(42)

	require.NoError(t, tapCallback(b, c, cbBuy, "gmail"))
	prompt := c.lastEdited(t)
	assert.Contains(t, prompt.text, "Fresh Gmail selected")
	assert.Contains(t, prompt.text, "Please select quantity: 1")
	require.NotNil(t, prompt.markup)
	require.Len(t, prompt.markup.InlineKeyboard, 2)

	require.NoError(t, tapCallback(b, c, cbQtyPlus, ""))
	require.NoError(t, tapCallback(b, c, cbQtyPlus, ""))
	assert.Contains(t, c.lastEdited(t).text, "Please select quantity: 3")

	require.NoError(t, tapCallback(b, c, cbQtyConfirm, ""))
	confirm := c.lastEdited(t)
	assert.Contains(t, confirm.text, "Quantity: 3")
	assert.Contains(t, confirm.text, "Total Price: 27৳")
	assert.Contains(t, confirm.text, "upload your file")

	c.message.Document = &tele.Document{FileName: "accounts.csv"}
	require.NoError(t, b.Document(c))

	orders, err := ledger.List(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Fresh Gmail", orders[0].Service)
	assert.EqualValues(t, 27, orders[0].Amount)
	assert.Equal(t, storage.StatusPending, orders[0].Status)

	require.Len(t, notifier.texts, 1)
	assert.Contains(t, notifier.texts[0], "📥 New Order")
	assert.Contains(t, notifier.texts[0], orders[0].ID)
	assert.Contains(t, notifier.texts[0], "Rahim Uddin")
	require.Len(t, notifier.relayed, 1)

	assert.Contains(t, c.lastSent(t).text, "আপনার অর্ডার গ্রহণ করা হয়েছে")
	assert.False(t, b.InProgress(42))
}

func TestBuyParsesFramedCallbackData(t *testing.T) {
	b, _, _ := newTestBot()
	c := newFakeContext(42)

	c.callback = &tele.Callback{Data: "\fbuy|gmail"}
	require.NoError(t, b.Buy(c))
	c.callback = nil

	prompt := c.lastEdited(t)
	assert.Contains(t, prompt.text, "Fresh Gmail selected")
	assert.True(t, b.InProgress(42))
}

func TestQuantityNeverBelowOne(t *testing.T) {
	b, _, _ := newTestBot()
	c := newFakeContext(7)

	require.NoError(t, tapCallback(b, c, cbBuy, "textnow"))
	require.NoError(t, tapCallback(b, c, cbQtyMinus, ""))
	assert.Contains(t, c.lastEdited(t).text, "Please select quantity: 1")
}

func TestQuantityCallbackWithoutFlow(t *testing.T) {
	b, _, ledger := newTestBot()
	c := newFakeContext(7)

	require.NoError(t, tapCallback(b, c, cbQtyPlus, ""))
	require.NotEmpty(t, c.responses)
	assert.Equal(t, "Unsupported action", c.responses[0].Text)
	assert.Empty(t, c.edited)

	count, err := ledger.OrderCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBuyUnknownProduct(t *testing.T) {
	b, _, _ := newTestBot()
	c := newFakeContext(7)

	require.NoError(t, tapCallback(b, c, cbBuy, "bitcoin"))
	require.NotEmpty(t, c.responses)
	assert.Equal(t, "Unsupported action", c.responses[0].Text)
	assert.False(t, b.InProgress(7))
}

func TestDocumentWithoutFlowIgnored(t *testing.T) {
	b, notifier, ledger := newTestBot()
	c := newFakeContext(7)
	c.message.Document = &tele.Document{FileName: "stray.xlsx"}

	require.NoError(t, b.Document(c))
	assert.Empty(t, c.sent)
	assert.Empty(t, notifier.texts)

	count, err := ledger.OrderCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestWithdrawalFlow(t *testing.T) {
	b, notifier, ledger := newTestBot()
	c := newFakeContext(99)

	require.NoError(t, b.Withdrawal(c))
	assert.Contains(t, c.lastSent(t).text, "Minimum 100")
	assert.Contains(t, c.lastSent(t).text, "Please enter Method")

	c.text = "Bkash"
	require.NoError(t, b.FlowText(c))
	assert.Equal(t, "📱 Enter your number:", c.lastSent(t).text)

	c.text = "01712345678"
	require.NoError(t, b.FlowText(c))
	assert.Contains(t, c.lastSent(t).text, "Enter amount")

	c.text = "abc"
	require.NoError(t, b.FlowText(c))
	assert.Equal(t, "❌ Enter a valid number", c.lastSent(t).text)
	assert.True(t, b.InProgress(99))

	c.text = "50"
	require.NoError(t, b.FlowText(c))
	assert.Equal(t, "❌ Minimum withdrawal 100৳", c.lastSent(t).text)
	assert.True(t, b.InProgress(99))

	c.text = "150"
	require.NoError(t, b.FlowText(c))

	orders, err := ledger.List(context.Background(), 99)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Withdraw Bkash", orders[0].Service)
	assert.EqualValues(t, 150, orders[0].Amount)

	require.Len(t, notifier.texts, 1)
	assert.Contains(t, notifier.texts[0], "💸 Withdrawal Request")
	assert.Contains(t, notifier.texts[0], "Method: Bkash")
	assert.Contains(t, notifier.texts[0], "Number: 01712345678")
	assert.Contains(t, notifier.texts[0], orders[0].ID)

	done := c.lastSent(t)
	assert.Contains(t, done.text, "Withdrawal request submitted!")
	assert.Contains(t, done.text, orders[0].ID)
	assert.False(t, b.InProgress(99))
}

func TestMenuResetsActiveFlow(t *testing.T) {
	b, _, _ := newTestBot()
	c := newFakeContext(31)

	require.NoError(t, b.Withdrawal(c))
	require.True(t, b.InProgress(31))

	require.NoError(t, b.Support(c))
	assert.False(t, b.InProgress(31))

	// A fresh purchase replaces an abandoned withdrawal outright.
	require.NoError(t, b.Withdrawal(c))
	require.NoError(t, tapCallback(b, c, cbBuy, "gvoice"))
	assert.Contains(t, c.lastEdited(t).text, "Google Voice selected")
}

func TestBalanceMessage(t *testing.T) {
	b, _, _ := newTestBot()
	c := newFakeContext(10)

	require.NoError(t, b.Balance(c))
	msg := c.lastSent(t)
	assert.Contains(t, msg.text, "Rahim Uddin")
	assert.Contains(t, msg.text, "Current Balance: 0৳")
	assert.Contains(t, msg.text, "only by Admin")
}

func TestHistoryEmptyAndPopulated(t *testing.T) {
	b, _, ledger := newTestBot()
	c := newFakeContext(55)

	require.NoError(t, b.History(c))
	assert.Equal(t, "❌ আপনার কোনো Transaction History নেই।", c.lastSent(t).text)

	first, err := ledger.Record(context.Background(), 55, "TextNow", 25)
	require.NoError(t, err)
	second, err := ledger.Record(context.Background(), 55, "Withdraw Nagad", 120)
	require.NoError(t, err)

	require.NoError(t, b.History(c))
	msg := c.lastSent(t)
	assert.True(t, strings.HasPrefix(msg.text, "📜 Your Transactions"))

	lines := strings.Split(strings.TrimSpace(msg.text), "\n")
	require.Len(t, lines, 4) // header, blank, two orders
	assert.Contains(t, lines[2], first.ID)
	assert.Contains(t, lines[2], "TextNow | 25৳ | Pending")
	assert.Contains(t, lines[3], second.ID)
	assert.Contains(t, lines[3], "Withdraw Nagad | 120৳ | Pending")
}

func TestSupportMessage(t *testing.T) {
	b, _, _ := newTestBot()
	c := newFakeContext(10)

	require.NoError(t, b.Support(c))
	msg := c.lastSent(t)
	assert.Contains(t, msg.text, "@BD_Network_Spport")
	assert.Contains(t, msg.text, "https://t.me/Bd_Network_24")
	assert.Contains(t, msg.text, "24/7 Active")
}

func TestStats(t *testing.T) {
	b, _, ledger := newTestBot()
	c := newFakeContext(1)

	_, err := ledger.Record(context.Background(), 5, "Talkatone", 28)
	require.NoError(t, err)

	require.NoError(t, b.Stats(c))
	msg := c.lastSent(t)
	assert.Contains(t, msg.text, "Orders recorded: 1")
	assert.Contains(t, msg.text, "Delivery errors: 2")
}
