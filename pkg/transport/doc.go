// Package transport serves the path service over NNG request/reply
// sockets (mangos). Every message is a frame: one flag byte followed by a
// JSON document, snappy-compressed when the flag is FlagSnappy. Replies
// use the same encoding as the request they answer.
//
// Requests:
//
//	{"id": "…", "op": "find_path", "params": {"start": "A", "goal": "E"}}
//
// Replies:
//
//	{"id": "…", "ok": true, "result": {…}}
//	{"id": "…", "ok": false, "error": "UnknownNode", "message": "…"}
package transport
