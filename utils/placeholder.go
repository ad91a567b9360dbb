package utils

// PlaceholderContent is the content body stored for a message whose payload
// is not text and whose sender supplied no caption.
func PlaceholderContent(kind string) string {
	switch kind {
	case "image":
		return "📷 Photo"
	case "file":
		return "📎 Attachment"
	case "location":
		return "📍 Location"
	case "contact":
		return "👤 Contact"
	case "poll":
		return "📊 Poll"
	case "call":
		return "📞 Call"
	default:
		return ""
	}
}
