package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"

	"clockwatch/internal/domain"
)

const (
	msgInvalidCredential   = "Invalid API key. Please check your API key is correct and try again."
	msgCredentialNotSet    = "You have not set an API key. Please set one using `/settings setapikey` and re-run the command."
	msgNotFound            = "The requested resource was not found."
	msgEmptyResult         = "No time entries were found for this time range."
	msgUpstreamUnavailable = "Clockify or the exchange rate service is unavailable right now. Please try again later."
	msgTimeout             = "Clockify took too long to respond. Try a shorter time range."
	msgInvalidInteraction  = "Invalid interaction. Please try again."
	msgUnknown             = "An unknown error occurred. Please report this to the bot developer."
)

// errorResponse maps err to the message shown to the user. It reports
// whether err was unexpected and should go to the error tracker.
func errorResponse(err error) (*discordgo.InteractionResponse, bool) {
	if errors.Is(err, context.DeadlineExceeded) {
		return errorMessage(msgTimeout), false
	}
	switch domain.KindOf(err) {
	case domain.KindInvalidCredential:
		return errorMessage(msgInvalidCredential), false
	case domain.KindCredentialNotSet:
		return errorMessage(msgCredentialNotSet), false
	case domain.KindResourceNotFound:
		return errorMessage(messageOr(err, msgNotFound)), false
	case domain.KindEmptyResult:
		return infoMessage(messageOr(err, msgEmptyResult), true), false
	case domain.KindUpstreamUnavailable:
		return errorMessage(msgUpstreamUnavailable), false
	case domain.KindInvalidInteraction:
		return errorMessage(msgInvalidInteraction), false
	case domain.KindInvalidInput:
		return errorMessage(messageOr(err, msgInvalidInteraction)), false
	default:
		return errorMessage(msgUnknown), true
	}
}

func messageOr(err error, fallback string) string {
	if m := domain.MessageOf(err); m != "" {
		return m
	}
	return fallback
}
