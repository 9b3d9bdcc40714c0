// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

/*
Package websocket pushes live state snapshots to connected dashboard clients.

It uses a hub-and-spoke layout built on gorilla/websocket: the Hub owns the
client set and the broadcast queue, and each Client runs a read pump and a
write pump on its own connection. The engine's update hook hands every new
snapshot to the hub, which fans it out as a "state" message; a client whose
send buffer fills is disconnected rather than allowed to stall the rest.

Keepalive uses protocol-level ping/pong with a 60 second pong deadline, plus
an application-level {"type":"ping"} echo for browser clients that cannot
observe control frames.
*/
package websocket
