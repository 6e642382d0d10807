package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/hako/durafmt"
	"github.com/jsphweid/rhythmdrill/constants"
	"github.com/jsphweid/rhythmdrill/drill"
	"github.com/jsphweid/rhythmdrill/midi"
	"github.com/jsphweid/rhythmdrill/model"
	"github.com/jsphweid/rhythmdrill/notation"
	"github.com/jsphweid/rhythmdrill/store"
	"github.com/pkg/errors"
	"github.com/rs/cors"
)

// Server exposes exercises over HTTP and playback sessions over WebSocket.
type Server struct {
	store    *store.Store
	logger   *log.Logger
	upgrader websocket.Upgrader
	perLine  int
}

func NewServer(s *store.Store, logger *log.Logger, perLine int) *Server {
	return &Server{
		store:   s,
		logger:  logger,
		perLine: perLine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/exercises", s.HandleCreate).Methods("POST")
	router.HandleFunc("/exercises/{id}", s.HandleGet).Methods("GET")
	router.HandleFunc("/exercises/{id}/sticking", s.HandleSticking).Methods("PUT")
	router.HandleFunc("/exercises/{id}/timeline", s.HandleTimeline).Methods("GET")
	router.HandleFunc("/exercises/{id}/midi", s.HandleMidi).Methods("GET")
	router.HandleFunc("/exercises/{id}/lily", s.HandleLily).Methods("GET")
	router.HandleFunc("/exercises/{id}/text", s.HandleText).Methods("GET")
	router.HandleFunc("/exercises/{id}/play", s.HandlePlay)

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
	})
	return c.Handler(router)
}

type exerciseResponse struct {
	*model.Exercise
	Params     model.Params `json:"params"`
	TotalBeats float64      `json:"totalBeats"`
	NoteBeats  []float64    `json:"noteBeats"`
	Duration   string       `json:"duration"`
}

func respond(d *drill.Drill) exerciseResponse {
	return exerciseResponse{
		Exercise:   d.Exercise,
		Params:     d.Params,
		TotalBeats: d.Exercise.TotalBeats(),
		NoteBeats:  d.Exercise.NoteOffsets(),
		Duration:   durafmt.Parse(d.Duration()).LimitFirstN(2).String(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*drill.Drill, bool) {
	d, err := s.store.Get(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	return d, true
}

func (s *Server) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p := model.DefaultParams()
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "Could not decode params: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	d, err := drill.Regenerate(log.WithContext(r.Context(), s.logger), p)
	if err != nil {
		s.logger.Error("regenerate failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.store.Put(d)
	writeJSON(w, http.StatusCreated, respond(d))
}

func (s *Server) HandleGet(w http.ResponseWriter, r *http.Request) {
	if d, ok := s.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, respond(d))
	}
}

type stickingRequest struct {
	Strategy model.Strategy `json:"strategy"`
	LeadHand model.Hand     `json:"leadHand"`
	Visible  *bool          `json:"visible"`
}

func (s *Server) HandleSticking(w http.ResponseWriter, r *http.Request) {
	var req stickingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Could not decode sticking: "+err.Error(), http.StatusBadRequest)
		return
	}
	d, err := s.store.Update(mux.Vars(r)["id"], func(d *drill.Drill) {
		visible := d.Params.ShowSticking
		if req.Visible != nil {
			visible = *req.Visible
		}
		d.Restick(req.Strategy, req.LeadHand, visible)
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, respond(d))
}

func (s *Server) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	if d, ok := s.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, d.Timeline())
	}
}

func (s *Server) HandleLily(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookup(w, r)
	if !ok {
		return
	}
	src, err := notation.Lily(d.Exercise, d.Params.Tempo)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/x-lilypond; charset=utf-8")
	fmt.Fprint(w, src)
}

func (s *Server) HandleText(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookup(w, r)
	if !ok {
		return
	}
	l, err := notation.Text(d.Exercise, s.perLine)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, l)
}

// measureRange reads the optional 1-based from/to measure query values and
// returns them as ticks.
func measureRange(r *http.Request, ex *model.Exercise) (uint64, uint64, bool, error) {
	q := r.URL.Query()
	if q.Get("from") == "" && q.Get("to") == "" {
		return 0, 0, false, nil
	}
	from, to := 1, len(ex.Measures)
	var err error
	if v := q.Get("from"); v != "" {
		if from, err = strconv.Atoi(v); err != nil {
			return 0, 0, false, errors.Wrap(err, "bad from")
		}
	}
	if v := q.Get("to"); v != "" {
		if to, err = strconv.Atoi(v); err != nil {
			return 0, 0, false, errors.Wrap(err, "bad to")
		}
	}
	if from < 1 || to > len(ex.Measures) || from > to {
		return 0, 0, false, errors.Errorf("measure range %d-%d outside 1-%d", from, to, len(ex.Measures))
	}
	var start, end float64
	for i, m := range ex.Measures {
		if i < from-1 {
			start += m.Signature.Beats()
		}
		if i < to {
			end += m.Signature.Beats()
		}
	}
	return uint64(start * constants.TicksPerBeat), uint64(end * constants.TicksPerBeat), true, nil
}

func (s *Server) HandleMidi(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookup(w, r)
	if !ok {
		return
	}
	from, to, partial, err := measureRange(r, d.Exercise)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	metronome := d.Params.Metronome
	if v := r.URL.Query().Get("metronome"); v != "" {
		if metronome, err = strconv.ParseBool(v); err != nil {
			http.Error(w, errors.Wrap(err, "bad metronome").Error(), http.StatusBadRequest)
			return
		}
	}
	sm, err := midi.Build(d.Exercise, midi.ExportOptions{Tempo: float64(d.Params.Tempo), Metronome: metronome})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if partial {
		sm = midi.Excerpt(sm, from, to)
	}
	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Exercise.ID+".mid"))
	if _, err := sm.WriteTo(w); err != nil {
		s.logger.Warn("midi download interrupted", "id", d.Exercise.ID, "err", err)
	}
}

func (s *Server) HandlePlay(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookup(w, r)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	sess := newSession(conn, d, s.logger)
	s.logger.Info("play session opened", "session", sess.id, "exercise", d.Exercise.ID)
	start := time.Now()
	sess.run(r.Context())
	s.logger.Info("play session closed", "session", sess.id, "duration", durafmt.Parse(time.Since(start)).LimitFirstN(2))
}
