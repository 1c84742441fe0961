package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"
)

// Logger module names.
const (
	ModuleChat         = "CHAT"
	ModuleRouter       = "ROUTER"
	ModuleModeration   = "MODERATION"
	ModuleKnowledge    = "KNOWLEDGE"
	ModuleCampus       = "CAMPUS"
	ModuleVoice        = "VOICE"
	ModuleConversation = "CONVERSATION"
	ModuleEvents       = "EVENTS"
)

// TitleMaxLength bounds a conversation title taken from its first message.
const TitleMaxLength = 50
