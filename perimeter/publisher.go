package perimeter

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Announcement is the JSON payload published after each successful generation
type Announcement struct {
	GeneratedAt  string  `json:"generated_at"`
	Layer        string  `json:"layer,omitempty"`
	NumPoints    int     `json:"num_points"`
	BufferMeters float64 `json:"buffer_meters"`
	CentroidLat  float64 `json:"centroid_lat"`
	CentroidLon  float64 `json:"centroid_lon"`
	AreaSqKm     float64 `json:"area_sq_km"`
	PerimeterKm  float64 `json:"perimeter_km"`
	Zone         string  `json:"zone"`
}

// Publisher manages publishing perimeter announcements to MQTT
type Publisher struct {
	client        mqtt.Client
	publishPrefix string
	qos           byte
	retain        bool
	last          *Announcement
	mu            sync.RWMutex
}

// NewPublisher creates a new announcement publisher
// If client is nil, publishing is disabled (for testing)
func NewPublisher(client mqtt.Client) *Publisher {
	prefix := os.Getenv("MQTT_PUBLISH_PREFIX")
	if prefix == "" {
		prefix = "windperim"
	}

	return &Publisher{
		client:        client,
		publishPrefix: prefix,
		qos:           0,    // QoS 0 for announcements (fire and forget)
		retain:        true, // Retain so late subscribers see the latest perimeter
	}
}

// PublishResult publishes a summary of the given result to <prefix>/perimeter
func (p *Publisher) PublishResult(res *Result) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	ann := &Announcement{
		GeneratedAt:  res.GeneratedAt.UTC().Format(time.RFC3339),
		Layer:        res.Layer,
		NumPoints:    len(res.Samples),
		BufferMeters: res.Options.BufferMeters,
		CentroidLat:  res.Centroid[1],
		CentroidLon:  res.Centroid[0],
		AreaSqKm:     res.Stats.AreaSqKm,
		PerimeterKm:  res.Stats.PerimeterKm,
		Zone:         res.Zone.Name,
	}

	// Store for status queries before attempting the publish
	p.mu.Lock()
	p.last = ann
	p.mu.Unlock()

	topic := fmt.Sprintf("%s/perimeter", p.publishPrefix)

	payload, err := json.Marshal(ann)
	if err != nil {
		return fmt.Errorf("marshaling announcement: %w", err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	log.Printf("Published perimeter announcement to %s (centroid %.6f, %.6f)",
		topic, ann.CentroidLat, ann.CentroidLon)
	return nil
}

// LastAnnouncement returns the most recently published announcement
func (p *Publisher) LastAnnouncement() (*Announcement, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return nil, false
	}

	// Return a copy to avoid race conditions
	annCopy := *p.last
	return &annCopy, true
}

// SetPrefix overrides the publish prefix (e.g. from config when the env var
// is unset). Empty prefixes are ignored.
func (p *Publisher) SetPrefix(prefix string) {
	if prefix != "" {
		p.publishPrefix = prefix
	}
}

// Prefix returns the current publish prefix
func (p *Publisher) Prefix() string {
	return p.publishPrefix
}

// SetQoS sets the Quality of Service level for publishing (0, 1, or 2)
func (p *Publisher) SetQoS(qos byte) {
	if qos <= 2 {
		p.qos = qos
	}
}

// SetRetain sets whether published messages should be retained by the broker
func (p *Publisher) SetRetain(retain bool) {
	p.retain = retain
}
