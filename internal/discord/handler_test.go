package discord

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedRequest(t *testing.T, priv ed25519.PrivateKey, body string) *http.Request {
	t.Helper()
	ts := "1710500000"
	sig := ed25519.Sign(priv, []byte(ts+body))
	req := httptest.NewRequest(http.MethodPost, "/interactions", strings.NewReader(body))
	req.Header.Set("X-Signature-Ed25519", hex.EncodeToString(sig))
	req.Header.Set("X-Signature-Timestamp", ts)
	return req
}

func newTestHandler(t *testing.T) (*Handler, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	b, _ := newTestBot(t, newStubTracker())
	return &Handler{Log: testLogger(), PublicKey: pub, Bot: b, Timeout: time.Second}, priv
}

func TestHandler_Ping(t *testing.T) {
	h, priv := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, priv, `{"id":"1","application_id":"999","type":1,"token":"t","version":1}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"type":1}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestHandler_RejectsBadSignature(t *testing.T) {
	h, _ := newTestHandler(t)
	_, other, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, other, `{"type":1}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewBufferString(`{"type":1}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_Command(t *testing.T) {
	h, priv := newTestHandler(t)
	body := `{
		"id": "1", "application_id": "999", "type": 2, "token": "t", "version": 1,
		"member": {"user": {"id": "42", "username": "alice"}},
		"data": {"id": "100", "name": "summary", "type": 1, "options": [
			{"name": "workspace", "type": 1, "options": [
				{"name": "workspace", "type": 3, "value": "ws1"},
				{"name": "time", "type": 3, "value": "Today"}
			]}
		]}
	}`

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, priv, body))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp discordgo.InteractionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	require.Len(t, resp.Data.Embeds, 1)
	assert.Equal(t, "Workspace Summary • Acme", resp.Data.Embeds[0].Author.Name)
}

func TestHandler_Autocomplete(t *testing.T) {
	h, priv := newTestHandler(t)
	body := `{
		"id": "1", "application_id": "999", "type": 4, "token": "t", "version": 1,
		"user": {"id": "42", "username": "alice"},
		"data": {"id": "100", "name": "summary", "type": 1, "options": [
			{"name": "all", "type": 1, "options": [
				{"name": "time", "type": 3, "value": "last", "focused": true}
			]}
		]}
	}`

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, priv, body))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp discordgo.InteractionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, discordgo.InteractionApplicationCommandAutocompleteResult, resp.Type)
	require.Len(t, resp.Data.Choices, 2)
	assert.Equal(t, "Last 7 Days", resp.Data.Choices[0].Name)
	assert.Equal(t, "Last 30 Days", resp.Data.Choices[1].Value)
}

func TestHandler_Malformed(t *testing.T) {
	h, priv := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, priv, `not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParsePublicKey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	got, err := ParsePublicKey(hex.EncodeToString(pub))
	require.NoError(t, err)
	assert.Equal(t, pub, got)

	_, err = ParsePublicKey("abcd")
	assert.Error(t, err)
	_, err = ParsePublicKey("zz")
	assert.Error(t, err)
}

func TestBot_Autocomplete(t *testing.T) {
	tracker := newStubTracker()
	tracker.workspaces = append(tracker.workspaces, tracker.workspaces[0])
	tracker.workspaces[1].ID, tracker.workspaces[1].Name = "ws2", "Side Gig"
	b, _ := newTestBot(t, tracker)

	focus := func(o *discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
		o.Focused = true
		return o
	}
	names := func(resp *discordgo.InteractionResponse) []string {
		var out []string
		for _, c := range resp.Data.Choices {
			out = append(out, c.Name)
		}
		return out
	}

	resp := b.Autocomplete(context.Background(), command("42", "summary", "workspace", focus(strOpt("workspace", "side"))))
	assert.Equal(t, []string{"Side Gig"}, names(resp))

	resp = b.Autocomplete(context.Background(), command("42", "summary", "project",
		strOpt("workspace", "ws1"), focus(strOpt("project", "web"))))
	assert.Equal(t, []string{"Globex - Website"}, names(resp))

	resp = b.Autocomplete(context.Background(), command("42", "summary", "project", focus(strOpt("project", "ret"))))
	assert.Equal(t, []string{"Acme - Retainer"}, names(resp))

	resp = b.Autocomplete(context.Background(), command("42", "summary", "workspace",
		strOpt("workspace", "ws1"), focus(strOpt("user", "b"))))
	assert.Equal(t, []string{"Bob"}, names(resp))

	resp = b.Autocomplete(context.Background(), command("42", "settings", "currency", focus(strOpt("code", ""))))
	assert.Len(t, resp.Data.Choices, maxChoices)

	resp = b.Autocomplete(context.Background(), command("7", "summary", "workspace", focus(strOpt("workspace", ""))))
	assert.Empty(t, resp.Data.Choices, "no api key means no suggestions")
}
