package perimeter

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewPublisher(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")

	publisher := NewPublisher(nil)
	if publisher == nil {
		t.Fatal("NewPublisher() returned nil")
	}

	if publisher.publishPrefix != "windperim" {
		t.Errorf("Default prefix = %s, want windperim", publisher.publishPrefix)
	}

	if publisher.qos != 0 {
		t.Errorf("Default QoS = %d, want 0", publisher.qos)
	}

	if !publisher.retain {
		t.Error("Default retain should be true")
	}
}

func TestNewPublisher_EnvPrefix(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "site/alpha")

	publisher := NewPublisher(nil)
	if publisher.Prefix() != "site/alpha" {
		t.Errorf("Prefix() = %s, want site/alpha", publisher.Prefix())
	}
}

func TestPublisher_SetPrefix(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")
	publisher := NewPublisher(nil)

	publisher.SetPrefix("site/bravo")
	if publisher.Prefix() != "site/bravo" {
		t.Errorf("Prefix() = %s, want site/bravo", publisher.Prefix())
	}

	// Empty prefixes are ignored
	publisher.SetPrefix("")
	if publisher.Prefix() != "site/bravo" {
		t.Errorf("Prefix() = %s after SetPrefix(\"\"), want site/bravo", publisher.Prefix())
	}
}

func TestPublisher_SetQoS(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")
	publisher := NewPublisher(nil)

	tests := []struct {
		name     string
		qos      byte
		expected byte
	}{
		{"QoS 0", 0, 0},
		{"QoS 1", 1, 1},
		{"QoS 2", 2, 2},
		{"Invalid QoS 3", 3, 0}, // Should be rejected, keep default
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher.qos = 0 // Reset
			publisher.SetQoS(tt.qos)
			if publisher.qos != tt.expected {
				t.Errorf("After SetQoS(%d), qos = %d, want %d", tt.qos, publisher.qos, tt.expected)
			}
		})
	}
}

func TestPublisher_SetRetain(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")
	publisher := NewPublisher(nil)

	publisher.SetRetain(false)
	if publisher.retain {
		t.Error("SetRetain(false) did not clear retain flag")
	}

	publisher.SetRetain(true)
	if !publisher.retain {
		t.Error("SetRetain(true) did not set retain flag")
	}
}

func TestPublisher_PublishWithNilClient(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")
	publisher := NewPublisher(nil)

	// Should not panic, should return error
	err := publisher.PublishResult(sampleResult())
	if err == nil {
		t.Error("PublishResult() with nil client should return error")
	}
}

func TestPublisher_PublishNotConnected(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")
	mock := NewMockClient()
	// mock starts disconnected

	publisher := NewPublisher(mock)
	err := publisher.PublishResult(sampleResult())
	if err == nil {
		t.Error("PublishResult() without connection should return error")
	}
	if len(mock.GetPublishedMessages()) != 0 {
		t.Error("nothing should be published while disconnected")
	}
}

func TestPublisher_PublishWithMockClient(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")
	mock := NewMockClient()
	mock.SetConnected(true)

	publisher := NewPublisher(mock)
	res := sampleResult()

	if err := publisher.PublishResult(res); err != nil {
		t.Fatalf("PublishResult() error = %v, want nil", err)
	}

	messages := mock.GetPublishedMessages()
	if len(messages) != 1 {
		t.Fatalf("Published messages count = %d, want 1", len(messages))
	}

	msg := messages[0]
	if msg.Topic != "windperim/perimeter" {
		t.Errorf("Topic = %s, want windperim/perimeter", msg.Topic)
	}
	if msg.QoS != 0 {
		t.Errorf("QoS = %d, want 0", msg.QoS)
	}
	if !msg.Retain {
		t.Error("Announcement should be retained")
	}

	var ann Announcement
	if err := json.Unmarshal(msg.Payload, &ann); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if ann.GeneratedAt != "2026-03-14T09:30:00Z" {
		t.Errorf("GeneratedAt = %s, want 2026-03-14T09:30:00Z", ann.GeneratedAt)
	}
	if ann.NumPoints != len(res.Samples) {
		t.Errorf("NumPoints = %d, want %d", ann.NumPoints, len(res.Samples))
	}
	if ann.CentroidLat != res.Centroid[1] || ann.CentroidLon != res.Centroid[0] {
		t.Errorf("Centroid = (%f, %f), want (%f, %f)",
			ann.CentroidLat, ann.CentroidLon, res.Centroid[1], res.Centroid[0])
	}
	if ann.AreaSqKm != res.Stats.AreaSqKm {
		t.Errorf("AreaSqKm = %f, want %f", ann.AreaSqKm, res.Stats.AreaSqKm)
	}
	if ann.PerimeterKm != res.Stats.PerimeterKm {
		t.Errorf("PerimeterKm = %f, want %f", ann.PerimeterKm, res.Stats.PerimeterKm)
	}
	if ann.Zone != "EPSG:32632" {
		t.Errorf("Zone = %s, want EPSG:32632", ann.Zone)
	}
}

func TestPublisher_LayerOmittedWhenEmpty(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")
	mock := NewMockClient()
	mock.SetConnected(true)

	publisher := NewPublisher(mock)
	res := sampleResult()
	res.Layer = ""

	if err := publisher.PublishResult(res); err != nil {
		t.Fatalf("PublishResult() error = %v", err)
	}

	payload := string(mock.GetPublishedMessages()[0].Payload)
	if strings.Contains(payload, `"layer"`) {
		t.Errorf("empty layer should be omitted from the payload: %s", payload)
	}
}

func TestPublisher_PublishError(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")
	mock := NewMockClient()
	mock.SetConnected(true)
	mock.SetPublishError(errors.New("broker unavailable"))

	publisher := NewPublisher(mock)
	err := publisher.PublishResult(sampleResult())
	if err == nil {
		t.Fatal("PublishResult() should surface the publish error")
	}
	if !strings.Contains(err.Error(), "windperim/perimeter") {
		t.Errorf("error should name the topic: %v", err)
	}
}

func TestPublisher_LastAnnouncement(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")
	mock := NewMockClient()
	mock.SetConnected(true)
	publisher := NewPublisher(mock)

	if _, ok := publisher.LastAnnouncement(); ok {
		t.Error("LastAnnouncement() should report false before any publish")
	}

	if err := publisher.PublishResult(sampleResult()); err != nil {
		t.Fatalf("PublishResult() error = %v", err)
	}

	ann, ok := publisher.LastAnnouncement()
	if !ok {
		t.Fatal("LastAnnouncement() should report true after a publish")
	}

	// Verify returned data is a copy (not a reference to internal state)
	ann.Zone = "mutated"
	again, _ := publisher.LastAnnouncement()
	if again.Zone == "mutated" {
		t.Error("LastAnnouncement() should return a copy, not internal references")
	}
}

func TestPublisher_LastAnnouncementKeptOnPublishFailure(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")
	mock := NewMockClient()
	mock.SetConnected(true)
	mock.SetPublishError(errors.New("broker unavailable"))
	publisher := NewPublisher(mock)

	if err := publisher.PublishResult(sampleResult()); err == nil {
		t.Fatal("expected publish error")
	}

	// the announcement is recorded even when the broker rejects it
	if _, ok := publisher.LastAnnouncement(); !ok {
		t.Error("LastAnnouncement() should report the attempted announcement")
	}
}

func TestPublisher_ConcurrentAccess(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")
	mock := NewMockClient()
	mock.SetConnected(true)
	publisher := NewPublisher(mock)
	res := sampleResult()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 50; j++ {
				_ = publisher.PublishResult(res)
				_, _ = publisher.LastAnnouncement()
			}
			done <- true
		}()
	}

	// Wait for all goroutines
	for i := 0; i < 10; i++ {
		<-done
	}

	// No panic = success
	if len(mock.GetPublishedMessages()) != 500 {
		t.Errorf("Published messages = %d, want 500", len(mock.GetPublishedMessages()))
	}
}

func BenchmarkPublisher_PublishResult(b *testing.B) {
	mock := NewMockClient()
	mock.SetConnected(true)
	publisher := NewPublisher(mock)
	res := sampleResult()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := publisher.PublishResult(res); err != nil {
			b.Fatalf("PublishResult: %v", err)
		}
	}
}

func BenchmarkPublisher_JSONMarshal(b *testing.B) {
	ann := &Announcement{
		GeneratedAt: "2026-03-14T09:30:00Z",
		NumPoints:   10,
		CentroidLat: 52.066667,
		CentroidLon: 8.1,
		AreaSqKm:    150,
		PerimeterKm: 52,
		Zone:        "EPSG:32632",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := json.Marshal(ann); err != nil {
			b.Fatalf("json.Marshal: %v", err)
		}
	}
}
