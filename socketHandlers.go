package main

import (
	"log"
	"time"

	"supply-risk/risk"

	socketio "github.com/googollee/go-socket.io"
)

type socketController struct {
	engine *risk.Engine
}

func newSocketController(engine *risk.Engine) *socketController {
	return &socketController{engine: engine}
}

func (c *socketController) emitEngineStatus(socket socketio.Conn) {
	socket.Emit("engineStatus", c.engine.Status())
}

// alertHub pushes high-severity risk assessments to every connected
// dashboard client.
type alertHub struct {
	server *socketio.Server
}

type riskAlert struct {
	Timestamp time.Time      `json:"timestamp"`
	Carrier   string         `json:"carrier,omitempty"`
	RiskLevel risk.RiskLevel `json:"risk_level"`
	Score     risk.RiskScore `json:"score"`
}

func newAlertHub(server *socketio.Server) *alertHub {
	return &alertHub{server: server}
}

func (h *alertHub) broadcastRiskAlert(carrier string, score risk.RiskScore) {
	alert := riskAlert{
		Timestamp: time.Now().UTC(),
		Carrier:   carrier,
		RiskLevel: score.RiskLevel,
		Score:     score,
	}
	if ok := h.server.BroadcastToNamespace("/", "riskAlert", alert); !ok {
		log.Printf("[Socket] riskAlert broadcast reached no namespace\n")
	}
}
