package interaction

// UsageText is the reply to a bare command
const UsageText = "❌ **Sử dụng lệnh Liêng:**\n" +
	"• `*lieng start [số tiền] @người1 @người2 ...`\n" +
	"• Ví dụ: `*lieng start 5000 @user1 @user2`\n" +
	"• Hoặc gõ `*lieng help` để xem thêm"

// HelpText explains the game
const HelpText = "📖 **Hướng dẫn chơi Liêng**\n\n" +
	"**Lệnh:**\n" +
	"• `*lieng start [số tiền cược] @người1 @người2 ...`\n\n" +
	"**Luật chơi:**\n" +
	"• Mỗi người nhận 3 lá bài\n" +
	"• Xếp hạng: Sáp > Liêng > Ảnh > Điểm\n" +
	"• Cược: Theo/Tố/Bỏ/All-in\n\n" +
	"**Ví dụ:** `*lieng start 5000 @user1 @user2`"
