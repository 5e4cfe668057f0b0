package websocket

import (
	"context"
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ledwatch/agent/src/capture"
	"github.com/ledwatch/agent/src/detection"
	"github.com/ledwatch/agent/src/log"
	"github.com/ledwatch/agent/src/models"
	"github.com/ledwatch/agent/src/monitor"
	"github.com/ledwatch/agent/src/utils"
)

type Message struct {
	ClientID    string            `json:"client_id"`
	MessageType string            `json:"message_type"`
	Message     map[string]string `json:"message"`
}

type Connection struct {
	Socket  *websocket.Conn
	mu      sync.Mutex
	Cancels map[string]context.CancelFunc
}

// Concurrency handling - sending messages
func (c *Connection) WriteJson(message Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Socket.WriteJSON(message)
}

var socketsMu sync.Mutex
var sockets = make(map[string]*Connection)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebsocketHandler serves the live view: a client subscribes to a camera and
// receives its latest frame, with the regions drawn in their status colors,
// as a base64 jpeg a few times per second.
func WebsocketHandler(c *gin.Context, configuration *models.Config, captureDevice *capture.Capture, aggregator *monitor.Aggregator) {
	w := c.Writer
	r := c.Request
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Log.Error("routers.websocket.WebsocketHandler(): upgrade failed: " + err.Error())
		return
	}
	defer conn.Close()

	var clientID string
	defer func() {
		socketsMu.Lock()
		if connection, exists := sockets[clientID]; exists {
			for _, cancel := range connection.Cancels {
				cancel()
			}
			delete(sockets, clientID)
		}
		socketsMu.Unlock()
	}()

	for {
		var message Message
		if err := conn.ReadJSON(&message); err != nil {
			return
		}
		clientID = message.ClientID

		socketsMu.Lock()
		connection, exists := sockets[clientID]
		if !exists {
			connection = &Connection{
				Socket:  conn,
				Cancels: make(map[string]context.CancelFunc),
			}
			sockets[clientID] = connection
		}
		socketsMu.Unlock()

		switch message.MessageType {
		case "hello":
			connection.WriteJson(Message{
				ClientID:    clientID,
				MessageType: "hello-back",
				Message: map[string]string{
					"message": "Hello " + clientID + "!",
				},
			})

		case "stream-start":
			cameraId := message.Message["camera_id"]
			if _, exists := connection.Cancels["stream-"+cameraId]; exists {
				continue
			}
			ctx, cancel := context.WithCancel(context.Background())
			connection.Cancels["stream-"+cameraId] = cancel
			go streamFrames(ctx, connection, configuration, captureDevice, aggregator, clientID, cameraId)

		case "stream-stop":
			cameraId := message.Message["camera_id"]
			if cancel, exists := connection.Cancels["stream-"+cameraId]; exists {
				cancel()
				delete(connection.Cancels, "stream-"+cameraId)
			} else {
				log.Log.Error("routers.websocket.WebsocketHandler(): no stream running for " + cameraId)
			}
		}
	}
}

func streamFrames(ctx context.Context, connection *Connection, configuration *models.Config, captureDevice *capture.Capture, aggregator *monitor.Aggregator, clientID string, cameraId string) {
	log.Log.Info("routers.websocket.streamFrames(): streaming " + cameraId + " to " + clientID)

	var regions []models.Region
	for _, camera := range configuration.Cameras {
		if camera.Id == cameraId {
			regions = camera.Regions
		}
	}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Log.Info("routers.websocket.streamFrames(): stopped streaming " + cameraId + " to " + clientID)
			return
		case <-ticker.C:
			frame, exists := captureDevice.LatestFrame(cameraId)
			if !exists {
				continue
			}
			detection.Annotate(&frame, regions, aggregator.CurrentStatus()[cameraId])
			jpeg, err := utils.EncodeJPEG(frame)
			frame.Close()
			if err != nil {
				log.Log.Error("routers.websocket.streamFrames(): encode failed: " + err.Error())
				continue
			}
			err = connection.WriteJson(Message{
				ClientID:    clientID,
				MessageType: "frame",
				Message: map[string]string{
					"camera_id": cameraId,
					"frame":     base64.StdEncoding.EncodeToString(jpeg),
				},
			})
			if err != nil {
				return
			}
		}
	}
}
