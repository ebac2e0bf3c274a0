package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// message type constants for websocket communication
const (
	// is sent after every change to one of the account's queues
	TypeQueueUpdated = "queue_updated"

	// is sent when a notification is recorded for the account
	TypeNotification = "notification"

	// is sent to a connecting client, and in reply to sync, with every queue
	TypeQueueState = "queue_state"

	// is sent by clients to request a fresh queue_state
	TypeSync = "sync"

	// is sent when an error occurs
	TypeError = "error"

	// is sent by clients to keep the connection alive
	TypePing = "ping"

	// is sent by server in response to ping
	TypePong = "pong"

	// is sent by server before shutdown
	TypeServerShutdown = "server_shutdown"
)

// client connection constants
const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// maximum message size allowed from peer
	maxMessageSize = 4 * 1024

	// inbound messages allowed per client per second
	maxMessagesPerSecond = 5
)

// hub connection limit constants
const (
	maxConnectionsPerUser = 5
	maxConnectionsPerIP   = 10
)

// errors
var (
	ErrInvalidMessage    = errors.New("invalid message format")
	ErrConnectionClosed  = errors.New("connection closed")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// represents a websocket message with typed payload
type Message struct {
	Type      string          `json:"type"`
	ClientID  string          `json:"-"` // internal only, not sent to clients
	UserID    string          `json:"user_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Sequence  uint64          `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// contains information about server shutdown
type ServerShutdownPayload struct {
	Reason string `json:"reason"`
}

// represents a websocket client connection
type Client struct {
	// unique identifier for this client
	ID string

	// account the connection belongs to
	UserID string

	// IP address of the client (for connection tracking)
	IPAddress string

	// websocket connection
	conn *websocket.Conn

	// hub reference for message routing
	hub *Hub

	// buffered channel of outbound messages
	send chan []byte

	// mutex for thread-safe operations
	mu sync.RWMutex

	// flag indicating if client is closed
	closed bool

	// rate limiting: inbound message timestamps (sliding window)
	messageTimestamps []time.Time
}

// maintains the set of connected clients and routes events to accounts
type Hub struct {
	// registered clients by user ID and client ID
	users map[string]map[string]*Client

	// register requests from clients
	Register chan *Client

	// unregister requests from clients
	Unregister chan *Client

	// inbound messages from clients
	Inbound chan *Message

	// mutex for thread-safe access to users
	mu sync.RWMutex

	// message handlers for different message types
	handlers map[string]MessageHandler

	// flag indicating if hub is running
	running bool

	// channel to signal shutdown
	shutdown chan struct{}

	// connection tracking: IP address -> count of connections
	ipConnections map[string]int

	// sequence numbers per user for message ordering
	userSequences map[string]uint64

	// callback after a client is registered (e.g., send queue_state)
	onClientRegistered func(client *Client)
}

// processes a specific message type
type MessageHandler func(hub *Hub, client *Client, msg *Message) error
