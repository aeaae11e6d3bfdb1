package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/classifier"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/recognition"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/service"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
	"github.com/ravantech1548/Face-recogn-attendance/internal/monitoring"
)

type Dependencies struct {
	Logger            *slog.Logger
	Addr              string
	AttendanceService *service.AttendanceService

	// Face events are limited per (client, staff) so one gateway can report
	// every staff member; recognition frames are limited per client.
	FaceEventRPS   float64
	FaceEventBurst int

	// Metrics defaults to monitoring.Handler().
	Metrics http.Handler
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	mux        *http.ServeMux
	attendance *service.AttendanceService
	limiter    *clientLimiter
}

func NewServer(d Dependencies) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = monitoring.Handler()
	}

	mux := http.NewServeMux()

	s := &Server{
		logger:     d.Logger,
		mux:        mux,
		attendance: d.AttendanceService,
		limiter:    newClientLimiter(d.FaceEventRPS, d.FaceEventBurst),
	}

	mux.HandleFunc("POST /attendance/check-in", s.handleCheckIn)
	mux.HandleFunc("POST /attendance/check-out", s.handleCheckOut)
	mux.HandleFunc("POST /attendance/face-event", s.handleFaceEvent)
	mux.Handle("POST /attendance/recognition", s.limiter.wrap("recognition", http.HandlerFunc(s.handleRecognition)))
	mux.HandleFunc("GET /attendance", s.handleListAttendance)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", d.Metrics)

	// The dashboard calls everything under /api.
	root := http.NewServeMux()
	root.Handle("/", mux)
	root.Handle("/api/", http.StripPrefix("/api", mux))

	handler := requestIDMiddleware(loggingMiddleware(d.Logger, root))

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// decodeBody reads a JSON or protobuf Struct body into dst. Unknown JSON
// fields are rejected when strict is set.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, strict bool, dst any) error {
	if isProtobuf(r) {
		var msg structpb.Struct
		if err := readProto(r, limit, &msg); err != nil {
			return err
		}
		return structInto(&msg, dst)
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if strict {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(dst)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "op", op, "err", err, "request_id", requestIDFrom(r.Context()))
	}
	replyError(w, r, status, code, msg)
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	s.handleManual(w, r, classifier.ManualCheckIn, http.StatusCreated, "Check-in recorded")
}

func (s *Server) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	s.handleManual(w, r, classifier.ManualCheckOut, http.StatusOK, "Check-out recorded")
}

func (s *Server) handleManual(w http.ResponseWriter, r *http.Request, kind classifier.Kind, status int, message string) {
	var req types.StaffActionRequest
	if err := decodeBody(w, r, maxRequestBody, true, &req); err != nil {
		replyError(w, r, http.StatusBadRequest, codeBadJSON, "invalid request body")
		return
	}

	rec, err := s.attendance.RecordManualAction(r.Context(), req.StaffID, kind)
	if err != nil {
		s.fail(w, r, kind.String(), err)
		return
	}

	reply(w, r, status, types.AttendanceResponse{Message: message, Attendance: rec})
}

func (s *Server) handleFaceEvent(w http.ResponseWriter, r *http.Request) {
	var req types.FaceEventRequest
	if err := decodeBody(w, r, maxRequestBody, true, &req); err != nil {
		replyError(w, r, http.StatusBadRequest, codeBadJSON, "invalid request body")
		return
	}
	if !s.limiter.check(w, r, "face-event", clientIP(r)+"|"+strings.TrimSpace(req.StaffID)) {
		return
	}

	res, err := s.attendance.RecordSighting(r.Context(), req.StaffID, req.Confidence)
	if err != nil {
		s.fail(w, r, "face_event", err)
		return
	}

	status := http.StatusOK
	if res.Action == types.SightingCheckedIn {
		status = http.StatusCreated
	}
	reply(w, r, status, res)
}

type recognitionResult struct {
	StaffID    string                  `json:"staffId"`
	Action     string                  `json:"action,omitempty"`
	Reason     string                  `json:"reason,omitempty"`
	Attendance *types.AttendanceRecord `json:"attendance,omitempty"`
	Error      string                  `json:"error,omitempty"`
	Message    string                  `json:"message,omitempty"`
}

type recognitionResponse struct {
	Results []recognitionResult `json:"results"`
}

func (s *Server) handleRecognition(w http.ResponseWriter, r *http.Request) {
	var frame recognition.Result
	if err := decodeBody(w, r, maxRecognitionBody, false, &frame); err != nil {
		replyError(w, r, http.StatusBadRequest, codeBadJSON, "invalid request body")
		return
	}

	outcomes := recognition.Forward(r.Context(), s.attendance, frame)

	resp := recognitionResponse{Results: make([]recognitionResult, 0, len(outcomes))}
	for _, o := range outcomes {
		res := recognitionResult{StaffID: o.StaffID}
		if o.Err != nil {
			status, code, msg := errorStatus(o.Err)
			if status >= http.StatusInternalServerError {
				s.logger.Error("recognition forward failed", "staff_id", o.StaffID, "err", o.Err,
					"request_id", requestIDFrom(r.Context()))
			}
			res.Error, res.Message = code, msg
		} else {
			res.Action = o.Sighting.Action
			res.Reason = o.Sighting.Reason
			rec := o.Sighting.Attendance
			res.Attendance = &rec
		}
		resp.Results = append(resp.Results, res)
	}

	reply(w, r, http.StatusOK, resp)
}

func (s *Server) handleListAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	views, err := s.attendance.QueryRecords(r.Context(), service.Filter{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		StaffID:   q.Get("staffId"),
	})
	if err != nil {
		s.fail(w, r, "query", err)
		return
	}
	if views == nil {
		views = []types.AttendanceView{}
	}
	writeJSON(w, http.StatusOK, views)
}

type healthResponse struct {
	OK    bool   `json:"ok"`
	Store string `json:"store"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.attendance.Ping(r.Context()); err != nil {
		s.logger.Warn("health: store ping failed", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{OK: false, Store: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{OK: true, Store: "ok"})
}
