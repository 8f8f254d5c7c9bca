package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/export"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/geo"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/metrics"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/model"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/obstacle"
	"github.com/yeonjoon13/moving-obstacle-tracker/internal/tracks"
)

// obstaclePosition is one obstacle in a broadcast frame. X and Y are Web
// Mercator meters for map clients.
type obstaclePosition struct {
	ID   uint   `json:"id"`
	Name string `json:"name,omitempty"`
	model.ObstacleView
	Heading float64 `json:"heading"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

type vehiclePosition struct {
	model.TelemetrySample
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type frame struct {
	Time      time.Time          `json:"time"`
	Obstacles []obstaclePosition `json:"obstacles"`
	Vehicles  []vehiclePosition  `json:"vehicles"`
}

type server struct {
	obstacles []*obstacle.MovingObstacle
	vehicles  *tracks.Buffer
	metrics   *metrics.Collector
	log       zerolog.Logger

	exportStep time.Duration
	lookback   time.Duration
	now        func() time.Time

	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
}

func newServer(obstacles []*obstacle.MovingObstacle, vehicles *tracks.Buffer, m *metrics.Collector, log zerolog.Logger) *server {
	return &server{
		obstacles:  obstacles,
		vehicles:   vehicles,
		metrics:    m,
		log:        log,
		exportStep: export.DefaultStep,
		lookback:   time.Minute,
		now:        time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/obstacles", s.handleObstacles)
	mux.HandleFunc("/obstacles/kml", s.handleObstaclesKML)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return mux
}

func (s *server) frame(ts time.Time) frame {
	f := frame{
		Time:      ts.UTC(),
		Obstacles: make([]obstaclePosition, 0, len(s.obstacles)),
	}
	for _, o := range s.obstacles {
		view := o.View(ts)
		x, y := geo.Mercator(view.Latitude, view.Longitude)
		f.Obstacles = append(f.Obstacles, obstaclePosition{
			ID:           o.ID,
			Name:         o.Name,
			ObstacleView: view,
			Heading:      o.HeadingAt(ts),
			X:            x,
			Y:            y,
		})
	}
	s.metrics.ObservePositionQueries(len(s.obstacles))

	latest := s.vehicles.Latest()
	f.Vehicles = make([]vehiclePosition, 0, len(latest))
	for _, v := range latest {
		x, y := geo.Mercator(v.Latitude, v.Longitude)
		f.Vehicles = append(f.Vehicles, vehiclePosition{TelemetrySample: v, X: x, Y: y})
	}
	return f
}

func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	s.clientsMu.Lock()
	s.clients[conn] = true
	s.clientsMu.Unlock()
	s.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("client connected")

	for {
		if _, _, err := conn.NextReader(); err != nil {
			s.clientsMu.Lock()
			delete(s.clients, conn)
			s.clientsMu.Unlock()
			s.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("client disconnected")
			return
		}
	}
}

func (s *server) broadcast() {
	msg, err := json.Marshal(s.frame(s.now()))
	if err != nil {
		s.log.Error().Err(err).Msg("marshal frame")
		return
	}

	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for client := range s.clients {
		if err := client.WriteMessage(websocket.TextMessage, msg); err != nil {
			s.log.Warn().Err(err).Msg("websocket write error")
			client.Close()
			delete(s.clients, client)
		}
	}
}

func (s *server) clientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

func (s *server) handleObstacles(w http.ResponseWriter, r *http.Request) {
	ts := s.now()
	if q := r.URL.Query().Get("at"); q != "" {
		parsed, err := time.Parse(time.RFC3339Nano, q)
		if err != nil {
			http.Error(w, "at must be RFC 3339", http.StatusBadRequest)
			return
		}
		ts = parsed
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.frame(ts).Obstacles); err != nil {
		s.log.Error().Err(err).Msg("encode obstacles")
	}
}

func (s *server) handleObstaclesKML(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	out := make([]export.ObstacleTrack, 0, len(s.obstacles))
	for _, o := range s.obstacles {
		out = append(out, export.ObstacleTrack{
			ID:     o.ID,
			Name:   o.Name,
			Points: export.LiveTrack(o, now, s.lookback, s.exportStep),
		})
	}

	w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
	if err := export.WriteLiveKML(w, out); err != nil {
		s.log.Error().Err(err).Msg("write live KML")
	}
}
