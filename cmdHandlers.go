package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"supply-risk/advisor"
	"supply-risk/assessments"
	"supply-risk/db"
	"supply-risk/models"
	"supply-risk/risk"
	"supply-risk/utils"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/mdobak/go-xerrors"
)

type apiError struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	Version       string `json:"version"`
	Timestamp     string `json:"timestamp"`
	MLModelStatus string `json:"ml_model_status"`
}

const serviceVersion = "1.0.0"

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiError{Message: message})
}

// writeCoreError maps the core error taxonomy onto HTTP statuses: a
// ValidationError is the caller's fault and its message is surfaced; any
// other failure is logged in full and surfaced generically.
func writeCoreError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	var validation *risk.ValidationError
	if errors.As(err, &validation) {
		writeJSONError(w, http.StatusBadRequest, validation.Error())
		return
	}
	logger.ErrorContext(ctx, "analytical core failure", slog.Any("error", xerrors.New(err)))
	writeJSONError(w, http.StatusInternalServerError, "internal server error")
}

func allowCORS(w http.ResponseWriter, r *http.Request, methods string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Credentials", "true")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return false
	}
	return true
}

// decodeShipment reads one shipment mapping, rejecting absent/empty bodies
// before they reach the core.
func decodeShipment(r *http.Request) (risk.ShipmentRecord, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return risk.ShipmentRecord{}, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return risk.ShipmentRecord{}, errors.New("invalid request payload")
	}
	if len(raw) == 0 {
		return risk.ShipmentRecord{}, errors.New("no shipment data provided")
	}

	var record risk.ShipmentRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return risk.ShipmentRecord{}, errors.New("invalid shipment fields")
	}
	return record, nil
}

func newHealthHandler(engine *risk.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowCORS(w, r, "GET") {
			return
		}
		if r.Method != http.MethodGet {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		writeJSON(w, http.StatusOK, healthResponse{
			Status:        "healthy",
			Service:       "Supply Chain Risk Intelligence Service",
			Version:       serviceVersion,
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			MLModelStatus: engine.Status().ModelStatus,
		})
	}
}

func newDelayPredictionHandler(engine *risk.Engine) http.HandlerFunc {
	logger := utils.GetLogger()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if !allowCORS(w, r, "POST") {
			return
		}
		if r.Method != http.MethodPost {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		record, err := decodeShipment(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		prediction, err := engine.PredictDelay(record)
		if err != nil {
			writeCoreError(ctx, w, logger, err)
			return
		}

		logger.InfoContext(ctx, "delay prediction complete",
			slog.Float64("predictedDelayHours", prediction.PredictedDelayHours),
			slog.String("riskLevel", string(prediction.RiskLevel)),
			slog.String("modelType", prediction.ModelType),
		)

		recordAssessment(models.AssessmentKindDelay, string(prediction.RiskLevel),
			prediction.PredictedDelayHours, record.Carrier, prediction)

		writeJSON(w, http.StatusOK, prediction)
	}
}

func newTrainingHandler(engine *risk.Engine) http.HandlerFunc {
	logger := utils.GetLogger()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if !allowCORS(w, r, "POST") {
			return
		}
		if r.Method != http.MethodPost {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var batch []risk.ShipmentRecord
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid training data format")
			return
		}

		summary, err := engine.TrainDelayModel(batch)
		if err != nil {
			writeCoreError(ctx, w, logger, err)
			return
		}

		logger.InfoContext(ctx, "delay model trained",
			slog.Float64("mae", summary.MAE),
			slog.Int("samples", summary.SampleCount),
			slog.Int("features", summary.FeatureCount),
		)
		writeJSON(w, http.StatusOK, summary)
	}
}

func newAnomalyAnalysisHandler(engine *risk.Engine) http.HandlerFunc {
	logger := utils.GetLogger()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if !allowCORS(w, r, "POST") {
			return
		}
		if r.Method != http.MethodPost {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var batch []risk.SupplierPerformanceRecord
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid supplier data format")
			return
		}

		report, err := engine.AnalyzeSuppliers(batch)
		if err != nil {
			writeCoreError(ctx, w, logger, err)
			return
		}

		logger.InfoContext(ctx, "supplier anomaly analysis complete",
			slog.Int("totalSuppliers", report.TotalSuppliers),
			slog.Int("anomalies", len(report.Anomalies)),
			slog.Float64("anomalyRate", report.AnomalyRate),
		)
		writeJSON(w, http.StatusOK, report)
	}
}

func newRiskScoreHandler(engine *risk.Engine, alerts *alertHub) http.HandlerFunc {
	logger := utils.GetLogger()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if !allowCORS(w, r, "POST") {
			return
		}
		if r.Method != http.MethodPost {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		record, err := decodeShipment(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		score, err := engine.ScoreRisk(record)
		if err != nil {
			writeCoreError(ctx, w, logger, err)
			return
		}

		logger.InfoContext(ctx, "risk scoring complete",
			slog.Float64("totalRiskScore", score.TotalRiskScore),
			slog.String("riskLevel", string(score.RiskLevel)),
		)

		recordAssessment(models.AssessmentKindRisk, string(score.RiskLevel),
			score.TotalRiskScore, record.Carrier, score)

		if alerts != nil && (score.RiskLevel == risk.RiskHigh || score.RiskLevel == risk.RiskCritical) {
			alerts.broadcastRiskAlert(record.Carrier, score)
		}

		writeJSON(w, http.StatusOK, score)
	}
}

func newAssessmentsHandler() http.HandlerFunc {
	logger := utils.GetLogger()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if !allowCORS(w, r, "GET") {
			return
		}
		if r.Method != http.MethodGet {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		history, err := assessments.LoadAssessments()
		if err != nil {
			logger.ErrorContext(ctx, "failed to load assessments", slog.Any("error", xerrors.New(err)))
			writeJSONError(w, http.StatusInternalServerError, "failed to load assessments")
			return
		}
		writeJSON(w, http.StatusOK, history)
	}
}

func newDashboardStatsHandler() http.HandlerFunc {
	logger := utils.GetLogger()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if !allowCORS(w, r, "GET") {
			return
		}
		if r.Method != http.MethodGet {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		stats, err := assessments.Stats()
		if err != nil {
			logger.ErrorContext(ctx, "failed to aggregate assessments", slog.Any("error", xerrors.New(err)))
			writeJSONError(w, http.StatusInternalServerError, "failed to aggregate assessments")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

type briefingResponse struct {
	Briefing string         `json:"briefing"`
	Score    risk.RiskScore `json:"risk_score"`
}

func newAdvisorBriefingHandler(engine *risk.Engine, gemini *advisor.GeminiClient) http.HandlerFunc {
	logger := utils.GetLogger()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if !allowCORS(w, r, "POST") {
			return
		}
		if r.Method != http.MethodPost {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if gemini == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "advisor is not configured")
			return
		}

		record, err := decodeShipment(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		score, err := engine.ScoreRisk(record)
		if err != nil {
			writeCoreError(ctx, w, logger, err)
			return
		}

		briefing, err := gemini.GenerateBriefing(score)
		if err != nil {
			logger.ErrorContext(ctx, "failed to generate briefing", slog.Any("error", xerrors.New(err)))
			writeJSONError(w, http.StatusBadGateway, "advisor failed to generate a briefing")
			return
		}

		writeJSON(w, http.StatusOK, briefingResponse{Briefing: briefing, Score: score})
	}
}

// recordAssessment persists one result best-effort: history failures are
// logged and never fail the request.
func recordAssessment(kind, riskLevel string, score float64, carrier string, payload interface{}) {
	logger := utils.GetLogger()

	encoded, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to encode assessment payload", slog.Any("error", err))
		return
	}

	assessment := &models.Assessment{
		Kind:      kind,
		RiskLevel: riskLevel,
		Score:     score,
		Carrier:   carrier,
		Payload:   encoded,
	}
	if err := assessments.SaveAssessment(assessment); err != nil {
		logger.Error("failed to save assessment", slog.Any("error", err))
	}
}

func serve(protocol, port string) {
	logger := utils.GetLogger()

	seed := time.Now().UnixNano()
	if seedStr := utils.GetEnv("RISK_ENGINE_SEED", ""); seedStr != "" {
		parsed, err := strconv.ParseInt(seedStr, 10, 64)
		if err != nil {
			log.Fatalf("invalid RISK_ENGINE_SEED value '%s': %v", seedStr, err)
		}
		seed = parsed
	}
	engine := risk.NewEngine(seed)

	dbClient, err := db.NewDBClient()
	if err != nil {
		log.Fatalf("failed to initialize assessment storage: %v", err)
	}
	defer dbClient.Close()
	assessments.Init(dbClient)

	var gemini *advisor.GeminiClient
	if utils.GetEnv("GEMINI_API_KEY", "") != "" {
		gemini, err = advisor.NewGeminiClient()
		if err != nil {
			log.Printf("WARNING: advisor unavailable: %v\n", err)
		} else {
			log.Println("Gemini advisor enabled")
		}
	}

	allowOriginFunc := func(r *http.Request) bool { return true }
	server := socketio.NewServer(&engineio.Options{
		PingTimeout:  60 * time.Second,
		PingInterval: 25 * time.Second,
		Transports: []transport.Transport{
			&websocket.Transport{CheckOrigin: allowOriginFunc},
			&polling.Transport{CheckOrigin: allowOriginFunc},
		},
	})

	controller := newSocketController(engine)
	alerts := newAlertHub(server)

	server.OnConnect("/", func(socket socketio.Conn) error {
		socket.SetContext("")
		log.Printf("CONNECTED: %s, remote addr: %s\n", socket.ID(), socket.RemoteAddr())
		controller.emitEngineStatus(socket)
		return nil
	})

	server.OnEvent("/", "requestEngineStatus", func(socket socketio.Conn) {
		controller.emitEngineStatus(socket)
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		log.Println("socket error:", e)
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Printf("Socket disconnected - ID: %s, Reason: %s\n", s.ID(), reason)
	})

	go func() {
		if err := server.Serve(); err != nil {
			log.Fatalf("socketio listen error: %s\n", err)
		}
	}()
	defer server.Close()

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", server)
	mux.HandleFunc("/health", newHealthHandler(engine))
	mux.HandleFunc("/api/predict/delay", newDelayPredictionHandler(engine))
	mux.HandleFunc("/api/train/delay-model", newTrainingHandler(engine))
	mux.HandleFunc("/api/analyze/anomalies", newAnomalyAnalysisHandler(engine))
	mux.HandleFunc("/api/predict/risk-score", newRiskScoreHandler(engine, alerts))
	mux.HandleFunc("/api/assessments", newAssessmentsHandler())
	mux.HandleFunc("/api/dashboard/stats", newDashboardStatsHandler())
	mux.HandleFunc("/api/advisor/briefing", newAdvisorBriefingHandler(engine, gemini))

	logger.Info("risk intelligence engine ready",
		slog.String("modelStatus", engine.Status().ModelStatus),
		slog.Int("featureCount", engine.Status().FeatureCount),
	)

	serveHTTP(protocol == "https", port, mux)
}

func serveHTTP(serveHTTPS bool, port string, handler http.Handler) {
	if serveHTTPS {
		httpsAddr := ":" + port
		httpsServer := &http.Server{
			Addr: httpsAddr,
			TLSConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			Handler: handler,
		}

		certKey := utils.GetEnv("CERT_KEY", "")
		certFile := utils.GetEnv("CERT_FILE", "")
		if certKey == "" || certFile == "" {
			log.Fatal("Missing cert")
		}

		log.Printf("Starting HTTPS server on %s\n", httpsAddr)
		if err := httpsServer.ListenAndServeTLS(certFile, certKey); err != nil {
			log.Fatalf("HTTPS server ListenAndServeTLS: %v", err)
		}
		return
	}

	log.Printf("Starting HTTP server on port %v", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("HTTP server ListenAndServe: %v", err)
	}
}
