package relay

// ChatMessageRequest asks the RAG engine a question about registered users.
type ChatMessageRequest struct {
	Question string `json:"question"`
}

// ChatResponse carries the answer back to the asking connection.
type ChatResponse struct {
	Question string                   `json:"question"`
	Answer   string                   `json:"answer"`
	Sources  []map[string]interface{} `json:"sources"`
}

// RegisterFaceRequest registers one face from a base64-encoded still frame.
type RegisterFaceRequest struct {
	Name     string                 `json:"name"`
	Image    string                 `json:"image"`
	Metadata map[string]interface{} `json:"metadata"`
}

// RegistrationResponse reports the stored face id.
type RegistrationResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// RecognizeFacesRequest submits one frame for recognition.
type RecognizeFacesRequest struct {
	Image string `json:"image"`
}

// BoundingBox locates a face within the submitted frame, in pixels.
type BoundingBox struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Face is a single recognition match. Confidence is in [0,1]. The bounding
// box is optional; older upstream versions omit it.
type Face struct {
	Name        string       `json:"name"`
	Confidence  float64      `json:"confidence"`
	BoundingBox *BoundingBox `json:"bounding_box,omitempty"`
}

// RecognitionResponse lists all faces recognized in the frame.
type RecognitionResponse struct {
	Faces   []Face `json:"faces"`
	Message string `json:"message"`
}

// RegisteredUsersResponse lists every registered face record.
type RegisteredUsersResponse struct {
	Users []map[string]interface{} `json:"users"`
}

// DeleteFaceRequest removes a registered face by id.
type DeleteFaceRequest struct {
	FaceID string `json:"faceId"`
}

// DeleteFaceResponse acknowledges the deletion.
type DeleteFaceResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ChatClearedResponse acknowledges clearing the chat history.
type ChatClearedResponse struct {
	Message string `json:"message"`
}

// RAGRefreshedResponse acknowledges a vector store refresh.
type RAGRefreshedResponse struct {
	Message string `json:"message"`
}

// ErrorPayload is the uniform body of every *-error event: a human-readable
// message plus the underlying error text.
type ErrorPayload struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// NewFaceRegistered is broadcast to all connections after a successful
// registration.
type NewFaceRegistered struct {
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
}

// FaceDeleted is broadcast to all connections after a successful deletion.
type FaceDeleted struct {
	FaceID    string `json:"faceId"`
	Timestamp string `json:"timestamp"`
}
