// Package http provides the REST API for sharelink.
//
// # Routes
//
//	GET  /                          service banner
//	GET  /health                    liveness and environment
//	GET  /metrics                   Prometheus exposition (when enabled)
//	POST /v1/files/upload           multipart upload: user_id field, then file part
//	GET  /v1/users/{user_id}/files  an owner's files, newest first, cursor paginated
//	POST /v1/files/{file_id}/sign   mint a time-limited link
//	GET  /v1/files/download         redeem a link (file_id, owner_id, exp, sig)
//
// Uploads are streamed: the file part is handed to the service as it arrives
// and never buffered in memory or spooled to a temporary file by this package.
// For that reason the user_id field must precede the file part.
//
// # Errors
//
// Every error is a JSON body of the form:
//
//	{"error": "bad_request", "message": "ttl_seconds must be >= 30"}
//
// Expired links answer 410. Any other failure to redeem a link, whether the
// signature is wrong, the file is gone, or the owner does not match, answers
// 403 with the same message.
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    Environment:   "prod",
//	    PublicURL:     "https://files.example.com",
//	    MaxUploadSize: 50 << 20,
//	    Metrics:       true,
//	}
//	handler := http.NewHandler(&handlerCfg, service)
//	http.ListenAndServe(":5708", handler.Router())
//
// The service parameter must implement the Service interface; *sharelink.Service does.
package http
