/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/rivescript-labs/rivescript/rivescript"
)

// RunWebSocketServer serves a one-connection-per-user chat front end
// on port: every text message received on a connection is passed to
// rs.Reply using the `user` query parameter as the user id (the
// connection's remote address when that parameter is absent), and the
// response is written back on the same connection.
//
// Grounded on cmd/mcrew/service-ws.go's WebSocketService: an
// upgrader, one goroutine-free read loop per connection, and
// best-effort error logging rather than propagating per-message
// errors to the caller.
func RunWebSocketServer(ctx context.Context, rs *rivescript.RiveScript, port string) error {
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/chat", func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade error: %s", err)
			return
		}
		defer c.Close()

		userID := r.URL.Query().Get("user")
		if userID == "" {
			userID = c.RemoteAddr().String()
		}
		log.Printf("websocket chat connection from %s", userID)

		for {
			mt, message, err := c.ReadMessage()
			if err != nil {
				log.Printf("websocket read error: %s", err)
				return
			}

			reply, err := rs.Reply(userID, string(message))
			if err != nil {
				log.Printf("websocket bridge: Reply error for %s: %s", userID, err)
				reply = err.Error()
			}

			if err := c.WriteMessage(mt, []byte(reply)); err != nil {
				log.Printf("websocket write error: %s", err)
				return
			}
		}
	})

	srv := &http.Server{Addr: port, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	log.Printf("websocket chat service on %s", port)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
