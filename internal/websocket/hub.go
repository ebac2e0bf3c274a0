package websocket

import (
	"time"

	"codeberg.org/pixelpress/server/internal/logger"
	"codeberg.org/pixelpress/server/internal/notifications"
	"codeberg.org/pixelpress/server/internal/queue"
)

func NewHub() *Hub {
	return &Hub{
		users:         make(map[string]map[string]*Client),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		Inbound:       make(chan *Message, 256),
		handlers:      make(map[string]MessageHandler),
		running:       false,
		shutdown:      make(chan struct{}),
		ipConnections: make(map[string]int),
		userSequences: make(map[string]uint64),
	}
}

// registers a handler for a specific message type
func (h *Hub) RegisterHandler(messageType string, handler MessageHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[messageType] = handler
}

// sets callback to be called after a client is registered
func (h *Hub) OnClientRegistered(callback func(client *Client)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onClientRegistered = callback
}

// starts the hub's main loop
func (h *Hub) Run() {
	h.mu.Lock()
	h.running = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
	}()

	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case message := <-h.Inbound:
			h.handleMessage(message)

		case <-h.shutdown:
			h.closeAllConnections()
			return
		}
	}
}

// adds a client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()

	if h.users[client.UserID] == nil {
		h.users[client.UserID] = make(map[string]*Client)
	}

	h.users[client.UserID][client.ID] = client

	if client.IPAddress != "" {
		h.ipConnections[client.IPAddress]++
	}

	callback := h.onClientRegistered
	h.mu.Unlock()

	logger.Info("client registered",
		"client_id", client.ID,
		"user_id", client.UserID,
	)

	if callback != nil {
		go callback(client)
	}
}

// removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userClients, exists := h.users[client.UserID]
	if !exists {
		return
	}

	if _, exists := userClients[client.ID]; !exists {
		return
	}

	delete(userClients, client.ID)
	client.Close()

	if client.IPAddress != "" {
		h.ipConnections[client.IPAddress]--

		if h.ipConnections[client.IPAddress] <= 0 {
			delete(h.ipConnections, client.IPAddress)
		}
	}

	if len(userClients) == 0 {
		delete(h.users, client.UserID)
		delete(h.userSequences, client.UserID)
	}

	logger.Info("client unregistered",
		"client_id", client.ID,
		"user_id", client.UserID,
	)
}

// processes an incoming message
func (h *Hub) handleMessage(msg *Message) {
	h.mu.RLock()
	sender, exists := h.users[msg.UserID][msg.ClientID]
	handler, handled := h.handlers[msg.Type]
	h.mu.RUnlock()

	if !exists {
		logger.Warn("sender client not found for message",
			"client_id", msg.ClientID,
			"user_id", msg.UserID,
			"message_type", msg.Type,
		)
		return
	}

	if !handled {
		logger.Warn("unhandled message type received",
			"message_type", msg.Type,
			"client_id", sender.ID,
		)

		sender.SendError("bad_request", "unsupported message type", "message type not recognized")
		return
	}

	// run handler asynchronously to avoid blocking the hub
	go func() {
		if err := handler(h, sender, msg); err != nil {
			logger.ErrorErr(err, "handler error",
				"message_type", msg.Type,
				"client_id", sender.ID,
				"user_id", sender.UserID,
			)

			sender.SendError("server_error", "failed to process message", err.Error())
		}
	}()
}

// sends a message to every connection of a user
func (h *Hub) SendToUser(userID string, msg *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userClients, exists := h.users[userID]
	if !exists {
		return
	}

	// assign sequence number to message
	h.userSequences[userID]++
	msg.Sequence = h.userSequences[userID]

	for clientID, client := range userClients {
		if err := client.Send(msg); err != nil {
			logger.ErrorErr(err, "failed to send message to client",
				"client_id", clientID,
				"user_id", userID,
			)
		}
	}
}

// pushes a queue change to the account's connections
func (h *Hub) PublishQueue(accountID string, view *queue.View) {
	if !h.IsUserConnected(accountID) {
		return
	}

	msg, err := NewMessage(TypeQueueUpdated, accountID, view)
	if err != nil {
		logger.ErrorErr(err, "failed to create queue_updated message", "user_id", accountID)
		return
	}

	h.SendToUser(accountID, msg)
}

// pushes a new notification to the user's connections
func (h *Hub) PublishNotification(userID string, n *notifications.Notification) {
	if !h.IsUserConnected(userID) {
		return
	}

	msg, err := NewMessage(TypeNotification, userID, n)
	if err != nil {
		logger.ErrorErr(err, "failed to create notification message", "user_id", userID)
		return
	}

	h.SendToUser(userID, msg)
}

// returns all connections of a user
func (h *Hub) GetUserClients(userID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.users[userID]))

	for _, client := range h.users[userID] {
		clients = append(clients, client)
	}

	return clients
}

// returns the number of connections a user has open
func (h *Hub) GetClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.users[userID])
}

// checks if a user has any open connection
func (h *Hub) IsUserConnected(userID string) bool {
	return h.GetClientCount(userID) > 0
}

func (h *Hub) Shutdown() {
	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()

	if running {
		close(h.shutdown)
	}
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()

	logger.Info("notifying clients of server shutdown")

	for userID, userClients := range h.users {
		shutdownMsg, err := NewMessage(TypeServerShutdown, userID, ServerShutdownPayload{
			Reason: "server is restarting; queued runs resume automatically",
		})
		if err != nil {
			logger.ErrorErr(err, "failed to create shutdown message")
			continue
		}

		for _, client := range userClients {
			if err := client.Send(shutdownMsg); err != nil {
				logger.ErrorErr(err, "failed to send shutdown notification",
					"client_id", client.ID,
					"user_id", userID,
				)
			}
		}
	}

	h.mu.Unlock()

	// give clients time to receive the shutdown message
	time.Sleep(500 * time.Millisecond)

	h.mu.Lock()
	defer h.mu.Unlock()

	logger.Info("closing all websocket connections")

	for _, userClients := range h.users {
		for _, client := range userClients {
			client.Close()
		}
	}

	// clear all users and connection tracking
	h.users = make(map[string]map[string]*Client)
	h.ipConnections = make(map[string]int)
	h.userSequences = make(map[string]uint64)
}

// checks if a new connection should be allowed based on limits
func (h *Hub) CanAcceptConnection(userID, ipAddress string) (bool, string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.users[userID]) >= maxConnectionsPerUser {
		return false, "Maximum connections per user exceeded"
	}

	if h.ipConnections[ipAddress] >= maxConnectionsPerIP {
		return false, "Maximum connections per IP address exceeded"
	}

	return true, ""
}
