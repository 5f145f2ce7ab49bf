package http

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/bracket-machines/internal/pubsub"
)

// PubSubPushHandler receives domain events delivered by a Pub/Sub push
// subscription and records them in the log.
func (s *Server) PubSubPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received pubsub push", "body", string(bodyBytes))

		var msg pushMessage
		if err := json.Unmarshal(bodyBytes, &msg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		rawData, err := base64.StdEncoding.DecodeString(msg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		event := pubsub.EventType(msg.Message.Attributes["event"])
		payload, ok := newPayload(event)
		if !ok {
			log.Warn("Unknown event type", "event", event, "messageID", msg.Message.MessageID)
			http.Error(w, "Unknown event type", http.StatusBadRequest)
			return
		}
		if err := s.pubsub.ProcessMessage(rawData, payload); err != nil {
			log.Error("Failed to decode event payload", "event", event, "error", err)
			http.Error(w, "Invalid event payload", http.StatusBadRequest)
			return
		}
		log.Info("Received event", "event", event, "messageID", msg.Message.MessageID, "payload", payload)
		w.Write([]byte("OK"))
	}
}

func newPayload(event pubsub.EventType) (any, bool) {
	switch event {
	case pubsub.EventMatchCommitted:
		return &pubsub.MatchCommitted{}, true
	case pubsub.EventRoundAdvanced:
		return &pubsub.RoundAdvanced{}, true
	case pubsub.EventTournamentFinished:
		return &pubsub.TournamentFinished{}, true
	case pubsub.EventMachineAssigned:
		return &pubsub.MachineAssigned{}, true
	}
	return nil, false
}
