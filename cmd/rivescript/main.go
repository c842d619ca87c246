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

// Command rivescript loads a RiveScript script directory and either
// drives an interactive REPL on stdin/stdout or stands up the
// optional network front ends (MQTT, WebSocket) and housekeeping
// cron, all talking to one shared *rivescript.RiveScript.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/rivescript-labs/rivescript/rivescript"
	"github.com/rivescript-labs/rivescript/session"
	"github.com/rivescript-labs/rivescript/util"
)

func main() {

	var (
		scriptsDir = flag.String("d", "scripts", "directory of .rive files to load")
		configFile = flag.String("c", "", "optional YAML config file")
		boltFile   = flag.String("b", "", "bolt database file for durable sessions (memory if empty)")

		repl = flag.Bool("repl", true, "run an interactive REPL on stdin/stdout")
		user = flag.String("u", "localuser", "user id to use for the REPL")

		mqttBroker = flag.String("mqtt", "", "MQTT broker URL, e.g. tcp://localhost:1883 (disabled if empty)")
		mqttTopic  = flag.String("mqtt-topic", "rivescript/+/in", "MQTT subscription topic (user id is the wildcard segment)")

		wsPort = flag.String("ws", "", "HTTP port for the WebSocket chat service (disabled if empty)")

		cronSpec = flag.String("cron", "", "cronexpr schedule for session housekeeping, e.g. '0 0 3 * * * *' (disabled if empty)")
	)

	flag.BoolVar(&util.Logging, "v", false, "log lots of wonderful things")

	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		<-sigs
		log.Printf("caught interrupt, shutting down")
		cancel()
	}()

	var cfg *rivescript.Config
	if *configFile != "" {
		c, err := rivescript.LoadConfigFile(*configFile)
		if err != nil {
			panic(err)
		}
		cfg = c
	}

	rs := newBot(cfg, *boltFile)

	if *scriptsDir != "" {
		warnings, err := rs.LoadDirectory(*scriptsDir)
		for _, w := range warnings {
			log.Printf("warning loading %s: %s", *scriptsDir, w)
		}
		if err != nil {
			panic(fmt.Errorf("LoadDirectory %s: %s", *scriptsDir, err))
		}
	}
	rs.SortReplies()

	if *mqttBroker != "" {
		go func() {
			if err := RunMQTTBridge(ctx, rs, *mqttBroker, *mqttTopic); err != nil {
				log.Printf("mqtt bridge stopped: %s", err)
				cancel()
			}
		}()
	}

	if *wsPort != "" {
		go func() {
			if err := RunWebSocketServer(ctx, rs, *wsPort); err != nil {
				log.Printf("websocket server stopped: %s", err)
				cancel()
			}
		}()
	}

	if *cronSpec != "" {
		hk, err := NewHousekeeper(rs, *cronSpec)
		if err != nil {
			panic(fmt.Errorf("bad cron spec %q: %s", *cronSpec, err))
		}
		go hk.Run(ctx)
	}

	if *repl {
		go func() {
			if err := runREPL(ctx, rs, *user, bufio.NewReader(os.Stdin), os.Stdout); err != nil {
				log.Printf("REPL done: %s", err)
			}
			cancel()
		}()
	}

	<-ctx.Done()

	if closer, is := rs.Sessions().(interface{ Close() error }); is {
		if err := closer.Close(); err != nil {
			log.Printf("session store close error: %s", err)
		}
	}
}

func newBot(cfg *rivescript.Config, boltFile string) *rivescript.RiveScript {
	if boltFile == "" {
		return rivescript.New(cfg)
	}
	store, err := session.OpenBoltManager(boltFile)
	if err != nil {
		panic(fmt.Errorf("opening bolt session store %s: %s", boltFile, err))
	}
	return rivescript.NewWithSessions(cfg, store)
}

// runREPL reads lines from in, feeds each to rs.Reply under user, and
// writes the response to out. A line of just "/quit" ends the loop.
func runREPL(ctx context.Context, rs *rivescript.RiveScript, user string, in *bufio.Reader, out *os.File) error {
	fmt.Fprintf(out, "> ")
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := in.ReadString('\n')
		if err != nil {
			return err
		}
		line = line[:len(line)-1]
		if line == "/quit" {
			return nil
		}

		reply, err := rs.Reply(user, line)
		if err != nil {
			fmt.Fprintf(out, "error: %s\n> ", err)
			continue
		}
		fmt.Fprintf(out, "%s\n> ", reply)
	}
}
