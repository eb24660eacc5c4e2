package realtime

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/classpulse/backend/internal/chat"
	"github.com/classpulse/backend/internal/session"
)

// Router maps inbound named actions to session and chat operations. Handled
// failures become a unicast error event to the originating connection only;
// state is never mutated on a failed action.
type Router struct {
	session *session.Session
	chat    *chat.Relay
	hub     *Hub
	logger  *zap.Logger
}

// NewRouter creates the action router.
func NewRouter(sess *session.Session, relay *chat.Relay, hub *Hub, logger *zap.Logger) *Router {
	return &Router{session: sess, chat: relay, hub: hub, logger: logger}
}

type joinPayload struct {
	Name string `json:"name"`
}

type createPollPayload struct {
	Question  string   `json:"question"`
	Options   []string `json:"options"`
	TimeLimit int64    `json:"timeLimit"`
}

type submitAnswerPayload struct {
	OptionIndex int `json:"optionIndex"`
}

type removeStudentPayload struct {
	StudentID string `json:"studentId"`
}

type sendMessagePayload struct {
	Message   string `json:"message"`
	IsTeacher bool   `json:"isTeacher"`
}

// HandleConnect unicasts the current truth to a new connection: the current
// poll slot (or null) and the roster. Late joiners converge without history.
func (r *Router) HandleConnect(connID string) {
	r.hub.SendTo(connID, "currentPoll", r.session.CurrentPoll())
	r.hub.SendTo(connID, "studentsUpdate", r.session.Students())
}

// HandleDisconnect treats a dropped connection as a student leaving.
func (r *Router) HandleDisconnect(connID string) {
	r.session.Leave(connID)
}

// HandleMessage dispatches one inbound action.
func (r *Router) HandleMessage(connID string, msg WSMessage) {
	switch msg.Event {
	case "joinAsStudent":
		var p joinPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			r.sendError(connID, "Invalid join data")
			return
		}
		student, err := r.session.Join(connID, p.Name)
		if err != nil {
			r.sendError(connID, err.Error())
			return
		}
		r.hub.SendTo(connID, "studentJoined", student)

	case "createPoll":
		var p createPollPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			r.sendError(connID, "Invalid poll data")
			return
		}
		if err := r.session.CreatePoll(connID, p.Question, p.Options, p.TimeLimit); err != nil {
			r.sendError(connID, err.Error())
		}

	case "submitAnswer":
		var p submitAnswerPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			r.sendError(connID, "Invalid answer data")
			return
		}
		if err := r.session.SubmitAnswer(connID, p.OptionIndex); err != nil {
			r.sendError(connID, err.Error())
		}

	case "endPoll":
		// Non-owner requests are silently ignored inside the session.
		r.session.EndPoll(connID)

	case "removeStudent":
		var p removeStudentPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			r.sendError(connID, "Invalid remove data")
			return
		}
		r.session.RemoveStudent(p.StudentID)

	case "sendMessage":
		var p sendMessagePayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return
		}
		r.chat.Send(connID, p.Message, p.IsTeacher)

	default:
		r.logger.Debug("unknown event", zap.String("event", msg.Event))
	}
}

func (r *Router) sendError(connID, message string) {
	r.hub.SendTo(connID, "error", map[string]string{"message": message})
}
