package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/automagictv/remy/internal/bot"
	"github.com/automagictv/remy/internal/telegram"
)

// maxUpdateBytes bounds a single webhook body.
const maxUpdateBytes = 1 << 20

type Server struct {
	dispatcher    bot.Dispatcher
	webhookSecret string
}

func NewServer(dispatcher bot.Dispatcher, webhookSecret string) *Server {
	return &Server{
		dispatcher:    dispatcher,
		webhookSecret: webhookSecret,
	}
}

// HandleTelegramUpdate accepts one webhook update and dispatches its command.
// Updates without a command are acknowledged and dropped.
func (s *Server) HandleTelegramUpdate(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&update); err != nil {
		http.Error(w, "Invalid update body", http.StatusBadRequest)
		return
	}

	cmd, ok := telegram.CommandFromUpdate(update)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := s.dispatcher.Dispatch(r.Context(), cmd); err != nil {
		slog.ErrorContext(r.Context(), "Failed to dispatch webhook command",
			"update_id", update.UpdateID,
			"command", cmd.Name,
			"error", err,
		)
		http.Error(w, "Failed to dispatch command", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
