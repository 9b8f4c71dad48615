package ui

import (
	appmodel "mailcraft/model"
)

type Message = appmodel.Message

// Message type aliases - these are defined in the model package
type streamChunkMsg = appmodel.StreamChunkMsg
type streamDoneMsg = appmodel.StreamDoneMsg
type streamErrorMsg = appmodel.StreamErrorMsg
type markdownRenderedMsg = appmodel.MarkdownRenderedMsg
type modelsListMsg = appmodel.ModelsListMsg
type providerPingMsg = appmodel.ProviderPingMsg
type credentialSavedMsg = appmodel.CredentialSavedMsg
type sessionsListMsg = appmodel.SessionsListMsg
type sessionLoadedMsg = appmodel.SessionLoadedMsg
type sessionSavedMsg = appmodel.SessionSavedMsg
type templateExportedMsg = appmodel.TemplateExportedMsg
type templateCopiedMsg = appmodel.TemplateCopiedMsg
type testEmailSentMsg = appmodel.TestEmailSentMsg
type flashTickMsg = appmodel.FlashTickMsg
