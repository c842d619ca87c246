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
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/rivescript-labs/rivescript/rivescript"
)

// RunMQTTBridge connects to broker, subscribes to inTopic (whose
// single "+" wildcard segment is taken as the user id), and for every
// message received calls rs.Reply, publishing the result to the same
// topic with "/in" replaced by "/out". It blocks until ctx is done or
// the connection is lost without reconnecting.
//
// Grounded on sio/siomq's Couplings: a broker connection plus an
// inbound publish handler that forwards to a core, and an outbound
// loop that publishes results back out.
func RunMQTTBridge(ctx context.Context, rs *rivescript.RiveScript, broker, inTopic string) error {
	outTopic, err := bridgeOutTopic(inTopic)
	if err != nil {
		return err
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID("rivescript-bridge")
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.AutoReconnect = true

	lost := make(chan error, 1)
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("mqtt connection lost: %s", err)
		select {
		case lost <- err:
		default:
		}
	}

	opts.DefaultPublishHandler = func(client mqtt.Client, msg mqtt.Message) {
		userID := bridgeUserID(inTopic, msg.Topic())
		if userID == "" {
			log.Printf("mqtt bridge: couldn't extract user id from topic %s", msg.Topic())
			return
		}

		reply, err := rs.Reply(userID, string(msg.Payload()))
		if err != nil {
			log.Printf("mqtt bridge: Reply error for %s: %s", userID, err)
			return
		}

		topic := strings.Replace(outTopic, "+", userID, 1)
		if t := client.Publish(topic, 0, false, reply); t.Wait() && t.Error() != nil {
			log.Printf("mqtt bridge: publish error: %s", t.Error())
		}
	}

	client := mqtt.NewClient(opts)
	if t := client.Connect(); t.Wait() && t.Error() != nil {
		return t.Error()
	}
	defer client.Disconnect(250)

	if t := client.Subscribe(inTopic, 0, nil); t.Wait() && t.Error() != nil {
		return t.Error()
	}
	log.Printf("mqtt bridge subscribed to %s, publishing replies to %s", inTopic, outTopic)

	select {
	case <-ctx.Done():
		return nil
	case err := <-lost:
		return err
	}
}

// bridgeOutTopic derives the reply topic from the subscription
// topic, swapping a trailing "/in" for "/out". Every other topic
// shape is rejected since there would be no safe way to avoid the
// bridge republishing to the topic it just consumed from.
func bridgeOutTopic(inTopic string) (string, error) {
	if !strings.HasSuffix(inTopic, "/in") {
		return "", fmt.Errorf("mqtt bridge: topic %q must end in \"/in\"", inTopic)
	}
	return strings.TrimSuffix(inTopic, "/in") + "/out", nil
}

// bridgeUserID extracts the "+" wildcard segment of pattern from the
// concrete topic actual, or "" if actual doesn't match pattern's
// shape.
func bridgeUserID(pattern, actual string) string {
	pparts := strings.Split(pattern, "/")
	aparts := strings.Split(actual, "/")
	if len(pparts) != len(aparts) {
		return ""
	}
	for i, p := range pparts {
		if p == "+" {
			return aparts[i]
		}
		if p != aparts[i] {
			return ""
		}
	}
	return ""
}
