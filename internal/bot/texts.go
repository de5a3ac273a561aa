package bot

import (
	"fmt"
	"strings"

	"github.com/bdnetwork/ordersbot/internal/storage"
)

// Reply keyboard labels. These exact strings are matched by the text router,
// so they must stay in sync with the keyboard built in Start.
const (
	MenuAccountSell = "🛒 Account Sell"
	MenuBalance     = "💰 Main Account Balance"
	MenuWithdrawal  = "💸 Withdrawal Balance"
	MenuHistory     = "📜 Transaction History"
	MenuSupport     = "📞 Support Info"
)

const (
	welcomeText = "🔥 Welcome to BD Network Bot"

	selectAccountText = "🛒 Select the account type you want to buy:"

	purchaseAcceptedText = "✅ আপনার অর্ডার গ্রহণ করা হয়েছে!\n" +
		"📌 অনুগ্রহ করে 24 ঘন্টা অপেক্ষা করুন, রিপোর্ট পেমেন্ট Clear করে দেওয়া হবে।\n\n" +
		"⚠️ কোনো Used File পেলে Payment বাতিল হবে।\n" +
		"* Password Changed হলেও Payment বাতিল হবে।"

	withdrawMethodPrompt = "💸 Withdrawal Request\n\n✅ Minimum %d টাকা থেকে শুরু\n\n" +
		"Please enter Method (Bkash/Nagad/Binance):"
	withdrawNumberPrompt = "📱 Enter your number:"
	withdrawAmountPrompt = "💵 Enter amount (Minimum %d):"

	amountFormatError  = "❌ Enter a valid number"
	amountMinimumError = "❌ Minimum withdrawal %d৳"

	withdrawSubmittedText = "✅ Withdrawal request submitted!\n🆔 Order ID: %s\n" +
		"📌 অনুগ্রহ করে এডমিন Approve না করা পর্যন্ত অপেক্ষা করুন।"

	noHistoryText = "❌ আপনার কোনো Transaction History নেই।"

	unsupportedActionText = "Unsupported action"
)

const historyTimeLayout = "2006-01-02 15:04"

func quantityPrompt(service string, price, qty int64) string {
	return fmt.Sprintf(
		"🛒 %s selected\n💵 Price: %d৳ per pcs\n\n➡️ Please select quantity: %d",
		service, price, qty,
	)
}

func uploadPrompt(qty, total int64) string {
	return fmt.Sprintf(
		"✅ Quantity: %d\n💵 Total Price: %d৳\n\n📂 Please upload your file (CSV/EXCEL).",
		qty, total,
	)
}

func balanceText(fullName string, balance int64) string {
	return fmt.Sprintf(
		"👤 User: %s\n💳 Current Balance: %d৳\n\n"+
			"⚠️ Note: Balance update only by Admin after order/payment verification.",
		fullName, balance,
	)
}

func newOrderAdminText(fullName, orderID, service string, amount int64) string {
	return fmt.Sprintf(
		"📥 New Order\n👤 User: %s\n🆔 Order ID: %s\n🛒 Service: %s\n💵 Amount: %d৳",
		fullName, orderID, service, amount,
	)
}

func withdrawalAdminText(fullName, method, number string, amount int64, orderID string) string {
	return fmt.Sprintf(
		"💸 Withdrawal Request\n👤 %s\nMethod: %s\nNumber: %s\nAmount: %d৳\nOrder ID: %s",
		fullName, method, number, amount, orderID,
	)
}

func historyText(orders []storage.Order) string {
	var b strings.Builder
	b.WriteString("📜 Your Transactions\n\n")
	for _, o := range orders {
		fmt.Fprintf(&b, "🆔 %s | %s | %d৳ | %s | %s\n",
			o.ID, o.Service, o.Amount, o.Status, o.CreatedAt.Format(historyTimeLayout))
	}
	return b.String()
}

func supportText(adminUsername, channelURL string) string {
	return fmt.Sprintf(
		"📞 Support Info  \n\n"+
			"👤 Admin: %s  \n"+
			"📢 Telegram Channel: %s  \n\n"+
			"🕒 Support Time: 24/7 Active",
		adminUsername, channelURL,
	)
}
