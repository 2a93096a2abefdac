// Package publitio provides a client for the Publitio media-hosting API.
//
// Every request is authenticated with four query parameters appended after
// the caller's own: api_key, api_timestamp (Unix seconds), api_nonce (eight
// random digits) and api_signature, the hex SHA-1 of timestamp+nonce+secret.
// A fresh signature is computed for each request.
//
// # Basic Usage
//
//	client, err := publitio.New("your-key", "your-secret")
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	// List files
//	resp, err := client.Get(ctx, "/files/list", publitio.P("limit", "10"))
//
//	// Upload a file
//	f, _ := os.Open("cat.jpg")
//	defer f.Close()
//	resp, err = client.UploadFile(ctx, "/files/create", f, publitio.P("title", "Cat"))
//
// Responses are generic JSON objects; use Response.Data or Response.Decode.
//
// # Error Handling
//
// Failures are classified so callers can tell them apart with errors.Is / errors.As:
//
//	resp, err := client.Get(ctx, path)
//	switch {
//	case errors.Is(err, publitio.ErrClientClosed):
//	    // Close was already called
//	case errors.Is(err, publitio.ErrInvalidURI):
//	    // bad path or parameter name
//	case errors.Is(err, publitio.ErrTransport):
//	    // network failure, timeout or cancelled context
//	case errors.Is(err, publitio.ErrResponseFormat):
//	    // body was not a JSON object: wrong endpoint or server error
//	}
//
// Requests are never retried.
package publitio
