package httpapi

import (
	"io"
	"net/http"

	"google.golang.org/protobuf/proto"
)

const (
	// maxRequestBody caps staff action and face-event payloads, which are a
	// staff id and an optional confidence.
	maxRequestBody = 4096

	// maxRecognitionBody caps a recognizer frame result, which can carry
	// several matches with bounding boxes.
	maxRecognitionBody = 64 << 10
)

// isProtobuf returns true if the request's Content-Type indicates a
// protobuf payload.
func isProtobuf(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return ct == "application/x-protobuf" ||
		ct == "application/protobuf" ||
		ct == "application/octet-stream"
}

// readProto reads at most limit bytes of the request body and unmarshals
// them into msg.
func readProto(r *http.Request, limit int64, msg proto.Message) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, limit))
	if err != nil {
		return err
	}
	return proto.Unmarshal(body, msg)
}

// writeProto marshals msg and writes it with the given HTTP status.
func writeProto(w http.ResponseWriter, status int, msg proto.Message) {
	data, err := proto.Marshal(msg)
	if err != nil {
		// Fall back to a plain-text error if marshalling fails.
		http.Error(w, "proto marshal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
