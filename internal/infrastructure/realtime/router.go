package realtime

import (
	"sync"
)

// Router tracks which user owns which live session and which sessions are
// subscribed to each conversation room. It is the process-local connection
// registry: lookups are O(1) in both directions (user -> session and
// session -> user) and every mutation keeps the forward and reverse indexes
// consistent under one lock.
type Router struct {
	mu           sync.RWMutex
	sessions     map[string]Session            // sessionID -> session
	userSessions map[string]string             // userID -> sessionID
	rooms        map[string]map[string]Session // conversationID -> sessionID -> session
	sessionRooms map[string]map[string]struct{} // sessionID -> set of conversationIDs
}

// NewRouter constructs an initialized Router.
func NewRouter() *Router {
	return &Router{
		sessions:     make(map[string]Session),
		userSessions: make(map[string]string),
		rooms:        make(map[string]map[string]Session),
		sessionRooms: make(map[string]map[string]struct{}),
	}
}

// Attach registers a session for its user. Last registered wins: if a
// previous session exists for the same user it is removed and terminated
// after the swap, so a user is only ever represented by their most recent
// connection.
func (r *Router) Attach(s Session) {
	var previous Session

	r.mu.Lock()
	if existingID, ok := r.userSessions[s.UserID()]; ok {
		if existing := r.sessions[existingID]; existing != nil {
			previous = existing
			r.detachLocked(existingID)
		}
	}

	r.sessions[s.ID()] = s
	r.userSessions[s.UserID()] = s.ID()
	r.sessionRooms[s.ID()] = make(map[string]struct{})
	r.mu.Unlock()

	if previous != nil {
		previous.Terminate(4001, "session replaced")
	}
}

// Detach removes a session and reports which user it belonged to. ok is
// false when the session was never attached (or was already replaced), in
// which case callers must treat the detach as a no-op rather than an error.
func (r *Router) Detach(s Session) (userID string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, tracked := r.sessions[s.ID()]; !tracked {
		return "", false
	}
	r.detachLocked(s.ID())
	return s.UserID(), true
}

// Join subscribes the session to the conversation room. Joining a room the
// session is already in has no effect.
func (r *Router) Join(conversationID string, s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID()]; !ok {
		return
	}

	room := r.rooms[conversationID]
	if room == nil {
		room = make(map[string]Session)
		r.rooms[conversationID] = room
	}
	room[s.ID()] = s

	memberships := r.sessionRooms[s.ID()]
	if memberships == nil {
		memberships = make(map[string]struct{})
		r.sessionRooms[s.ID()] = memberships
	}
	memberships[conversationID] = struct{}{}
}

// Leave removes the session from the conversation room.
func (r *Router) Leave(conversationID string, s Session) {
	r.mu.Lock()
	r.leaveLocked(conversationID, s.ID())
	r.mu.Unlock()
}

// RoomSize reports how many sessions are subscribed to the conversation.
func (r *Router) RoomSize(conversationID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[conversationID])
}

// Broadcast writes payload to every session in the conversation room,
// sender included, and returns how many deliveries were accepted.
func (r *Router) Broadcast(conversationID string, payload []byte) int {
	r.mu.RLock()
	room := r.rooms[conversationID]
	if len(room) == 0 {
		r.mu.RUnlock()
		return 0
	}

	delivered := 0
	for _, s := range room {
		if err := s.Deliver(payload); err == nil {
			delivered++
		}
	}
	r.mu.RUnlock()
	return delivered
}

// BroadcastAll writes payload to every attached session. excludeUserID,
// when non-empty, skips that user; presence announcements use it so a user
// does not receive their own online event.
func (r *Router) BroadcastAll(payload []byte, excludeUserID string) int {
	r.mu.RLock()
	delivered := 0
	for _, s := range r.sessions {
		if excludeUserID != "" && s.UserID() == excludeUserID {
			continue
		}
		if err := s.Deliver(payload); err == nil {
			delivered++
		}
	}
	r.mu.RUnlock()
	return delivered
}

// NotifyUser delivers payload to the current session of the given user.
func (r *Router) NotifyUser(userID string, payload []byte) bool {
	r.mu.RLock()
	sessionID, ok := r.userSessions[userID]
	if !ok {
		r.mu.RUnlock()
		return false
	}
	s := r.sessions[sessionID]
	r.mu.RUnlock()
	if s == nil {
		return false
	}
	return s.Deliver(payload) == nil
}

// Close terminates all tracked sessions and clears router state.
func (r *Router) Close() {
	r.mu.Lock()
	sessions := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[string]Session)
	r.userSessions = make(map[string]string)
	r.rooms = make(map[string]map[string]Session)
	r.sessionRooms = make(map[string]map[string]struct{})
	r.mu.Unlock()

	for _, s := range sessions {
		s.Terminate(1001, "router shutdown")
	}
}

func (r *Router) detachLocked(sessionID string) {
	s, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	delete(r.sessions, sessionID)

	if current, ok := r.userSessions[s.UserID()]; ok && current == sessionID {
		delete(r.userSessions, s.UserID())
	}

	for roomID := range r.sessionRooms[sessionID] {
		r.leaveLocked(roomID, sessionID)
	}
	delete(r.sessionRooms, sessionID)
}

func (r *Router) leaveLocked(conversationID string, sessionID string) {
	if sessionID == "" {
		return
	}
	room := r.rooms[conversationID]
	if room == nil {
		return
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(r.rooms, conversationID)
	}
	if memberships, ok := r.sessionRooms[sessionID]; ok {
		delete(memberships, conversationID)
		if len(memberships) == 0 {
			delete(r.sessionRooms, sessionID)
		}
	}
}
