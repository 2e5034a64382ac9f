package ws

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/acelemming/bubchat/models"
	"github.com/acelemming/bubchat/pkg"
)

// dispatch routes one inbound text from a connection. Runs on the hub
// goroutine; everything it touches is hub-owned.
//
// Raw command text can embed secrets or targeted identifiers and must
// never reach other connections, so every failure path here answers
// with a private notice or nothing at all.
func (h *Hub) dispatch(client *Client, raw string) {
	if _, ok := h.clients[client]; !ok {
		// Released while the event sat in the queue.
		return
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		return
	}

	if !strings.HasPrefix(text, "/") {
		h.handleChat(client, text)
		return
	}

	fields := strings.Fields(text)
	verb := strings.ToLower(fields[0])

	if verb == "/login" {
		h.handleLogin(client, fields)
		return
	}

	if !client.isAdmin {
		h.privateNotice(client, "You are not authorized to use commands. Log in with /login.")
		return
	}

	switch verb {
	case "/ban":
		h.handleBan(client, fields)
	case "/unban":
		h.handleUnban(client, fields)
	case "/kick":
		h.handleKick(client, fields)
	case "/deleteall":
		h.handleDeleteAll(client, fields)
	default:
		h.privateNotice(client, "Unknown command.")
	}
}

// handleChat commits a plain message: append to history, broadcast to
// everyone in hub order.
func (h *Hub) handleChat(client *Client, text string) {
	if !h.limiter.Allow(client.identity.Fingerprint) {
		wait := h.limiter.CooldownSeconds(client.identity.Fingerprint)
		h.privateNotice(client, fmt.Sprintf("You are sending messages too quickly. Wait %d seconds.", wait))
		return
	}

	msg := models.Message{
		Nickname:  client.identity.Nickname,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	h.history.Append(msg)
	h.broadcast(Event{Op: OpMessageNew, Data: msg})
}

// handleLogin drives the per-connection admin state machine. Attempts
// are answered privately and never appended to history or broadcast.
func (h *Hub) handleLogin(client *Client, fields []string) {
	if client.isAdmin {
		// Re-login is an idempotent success.
		h.privateNotice(client, "Already logged in as admin.")
		return
	}

	authorized := false
	if len(fields) >= 2 && h.admin.IsAdminName(client.identity.Nickname) {
		authorized = bcrypt.CompareHashAndPassword(h.adminHash, []byte(fields[1])) == nil
	}

	if !authorized {
		h.privateNotice(client, "Incorrect password or not an admin name.")
		h.log.Warn().Str("nickname", client.identity.Nickname).Msg("failed admin login")
		return
	}

	client.isAdmin = true
	h.privateNotice(client, "Logged in as admin.")
	h.log.Info().Str("nickname", client.identity.Nickname).Msg("admin logged in")
}

// handleBan resolves the target to one or more fingerprints and bans
// them. A live nickname match wins; otherwise the target string is
// taken as a literal fingerprint. Every live connection holding a
// banned fingerprint is force-closed, keeping the registry and the ban
// set disjoint.
func (h *Hub) handleBan(client *Client, fields []string) {
	if len(fields) < 2 {
		h.privateNotice(client, "Usage: /ban <fingerprint-or-nickname>")
		return
	}
	target := fields[1]
	actor := client.identity.Nickname

	var persistErr error
	if matches := h.findByNickname(target); len(matches) > 0 {
		seen := make(map[string]struct{}, len(matches))
		for _, m := range matches {
			fp := m.identity.Fingerprint
			if _, dup := seen[fp]; dup {
				continue
			}
			seen[fp] = struct{}{}
			if _, err := h.moderation.Ban(context.Background(), fp, target, actor); err != nil {
				persistErr = err
			}
		}
	} else {
		if _, err := h.moderation.Ban(context.Background(), target, "", actor); err != nil {
			persistErr = err
		}
	}

	for c := range h.clients {
		if h.moderation.IsBanned(c.identity.Fingerprint) {
			h.forceDisconnect(c, "You were banned by "+actor+".")
		}
	}

	h.systemNotice(fmt.Sprintf("%s was banned by %s", target, actor))
	h.privateNotice(client, fmt.Sprintf("Ban recorded for %s.", target))
	if persistErr != nil {
		h.privateNotice(client, "Warning: the ban is active but could not be saved to storage.")
	}
}

func (h *Hub) handleUnban(client *Client, fields []string) {
	if len(fields) < 2 {
		h.privateNotice(client, "Usage: /unban <fingerprint-or-nickname>")
		return
	}
	target := fields[1]
	actor := client.identity.Nickname

	_, err := h.moderation.Unban(context.Background(), target)
	if errors.Is(err, pkg.ErrNotFound) {
		h.privateNotice(client, fmt.Sprintf("No ban found for %s.", target))
		return
	}

	h.systemNotice(fmt.Sprintf("%s was unbanned by %s", target, actor))
	if err != nil {
		h.privateNotice(client, "Warning: the unban is active but could not be saved to storage.")
	}
}

func (h *Hub) handleKick(client *Client, fields []string) {
	if len(fields) < 2 {
		h.privateNotice(client, "Usage: /kick <nickname>")
		return
	}
	target := fields[1]
	actor := client.identity.Nickname

	matches := h.findByNickname(target)
	if len(matches) == 0 {
		h.privateNotice(client, fmt.Sprintf("No connected user named %s.", target))
		return
	}

	for _, m := range matches {
		h.forceDisconnect(m, "You were kicked by "+actor+".")
	}
	h.systemNotice(fmt.Sprintf("%s was kicked by %s", target, actor))
}

// handleDeleteAll purges history. When a confirmation secret is
// configured the command must repeat it; the secret is compared in
// constant time and, like the rest of the command, never broadcast.
func (h *Hub) handleDeleteAll(client *Client, fields []string) {
	if h.admin.DeleteSecret != "" {
		if len(fields) < 2 || subtle.ConstantTimeCompare([]byte(fields[1]), []byte(h.admin.DeleteSecret)) != 1 {
			h.privateNotice(client, "Confirmation secret missing or wrong.")
			return
		}
	}

	h.history.Clear()
	h.broadcast(Event{Op: OpClearHistory})
	h.systemNotice(fmt.Sprintf("Chat history was cleared by %s", client.identity.Nickname))
}

// systemNotice broadcasts a public notice to every connection.
func (h *Hub) systemNotice(text string) {
	h.broadcast(Event{Op: OpSystem, Data: NoticeData{Text: text, Timestamp: time.Now().UTC()}})
}

// privateNotice answers the originating connection only.
func (h *Hub) privateNotice(client *Client, text string) {
	h.deliver(client, Event{Op: OpSystemPrivate, Data: NoticeData{Text: text, Timestamp: time.Now().UTC()}})
}
