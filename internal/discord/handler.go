package discord

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
)

const maxBodyBytes = 1 << 20

// Handler serves Discord's interactions endpoint.
type Handler struct {
	Log       *slog.Logger
	PublicKey ed25519.PublicKey
	Bot       *Bot

	// Timeout bounds the work done for one interaction. Discord drops
	// responses that take longer than three seconds.
	Timeout time.Duration
}

// ParsePublicKey decodes the hex encoded application public key.
func ParsePublicKey(s string) (ed25519.PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) != ed25519.PublicKeySize {
		return nil, errors.New("discord: public key must be 32 bytes")
	}
	return ed25519.PublicKey(b), nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if !discordgo.VerifyInteraction(r, h.PublicKey) {
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "unreadable body", http.StatusBadRequest)
		return
	}
	var i discordgo.Interaction
	if err := json.Unmarshal(body, &i); err != nil {
		h.Log.Warn("malformed interaction", slog.String("err", err.Error()))
		http.Error(w, "malformed interaction", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	var resp *discordgo.InteractionResponse
	switch i.Type {
	case discordgo.InteractionPing:
		resp = &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong}
	case discordgo.InteractionApplicationCommand:
		resp = h.Bot.Command(ctx, &i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		resp = h.Bot.Autocomplete(ctx, &i)
	default:
		h.Log.Warn("unsupported interaction type", slog.Int("type", int(i.Type)))
		http.Error(w, "unsupported interaction type", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.Log.Error("writing interaction response", slog.String("err", err.Error()))
	}
}
