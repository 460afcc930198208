package app

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // allow browser clients from any origin on the boat LAN
	},
}

// wsEvent is the envelope pushed to websocket clients: the short topic
// name plus the report payload as published on MQTT.
type wsEvent struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

// latestStore keeps the most recent payload per topic for the REST API.
type latestStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func (s *latestStore) set(topic string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[topic] = append([]byte(nil), payload...)
}

func (s *latestStore) get(topic string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.data[topic]
	return p, ok
}

// wsHub fans incoming payloads out to the connected websocket clients.
type wsHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func (h *wsHub) add(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *wsHub) remove(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

func (h *wsHub) broadcast(topic string, payload []byte) {
	msg, err := json.Marshal(wsEvent{Topic: topic, Data: payload})
	if err != nil {
		log.Printf("web: websocket envelope marshal error: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.Close()
			delete(h.clients, c)
		}
	}
}

// RunWeb serves the chart page: REST endpoints with the latest report
// per topic and a websocket pushing every report as it arrives, plus
// the static assets.
func RunWeb(cfg config.Config) error {
	store := &latestStore{data: make(map[string][]byte)}
	hub := &wsHub{clients: make(map[*websocket.Conn]bool)}

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTT.Broker).
		SetClientID("navsat-web-subscriber")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTT.Broker)

	// 2) Subscribe to the navigation topics; each message updates the
	// REST snapshot and is pushed to the websocket clients.
	for _, name := range []string{"fix", "vel", "time_reference", "status"} {
		name := name
		topic := cfg.MQTT.TopicPrefix + "/" + name
		token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			store.set(name, msg.Payload())
			hub.broadcast(name, msg.Payload())
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("web: subscribed to MQTT topic %s", topic)
	}

	// 3) JSON API endpoints: latest report per topic
	http.HandleFunc("/api/fix", serveLatest(store, "fix"))
	http.HandleFunc("/api/velocity", serveLatest(store, "vel"))
	http.HandleFunc("/api/time_reference", serveLatest(store, "time_reference"))
	http.HandleFunc("/api/status", serveLatest(store, "status"))

	// 4) Websocket stream of all reports
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		hub.add(conn)
		log.Printf("web: websocket client connected from %s", r.RemoteAddr)

		// Drain the client side; leaving the loop unregisters it.
		go func() {
			defer func() {
				hub.remove(conn)
				conn.Close()
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
						log.Printf("web: websocket read error: %v", err)
					}
					return
				}
			}
		}()
	})

	// 5) Static files as the root
	fs := http.FileServer(http.Dir(cfg.Web.Assets))
	http.Handle("/", fs)

	log.Printf("web: server listening on %s", cfg.Web.Addr)
	return http.ListenAndServe(cfg.Web.Addr, nil)
}

func serveLatest(store *latestStore, topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := store.get(topic)
		if !ok {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(payload); err != nil {
			log.Printf("web: response write error: %v", err)
		}
	}
}
