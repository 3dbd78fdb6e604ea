// Command smoke drives a running server through one location lookup and one
// cartoon, then downloads the image.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/agenthands/cartoonist/internal/logging"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	place := flag.String("place", "Paris, France", "manual location")
	out := flag.String("out", "", "write the cartoon image to this file")
	flag.Parse()

	logger := logging.New("info")
	client := &http.Client{Timeout: 3 * time.Minute}
	session := uuid.NewString()

	var loc struct {
		Display string `json:"display"`
	}
	if code, err := call(client, http.MethodPost, *baseURL+"/location", session, map[string]string{"manual": *place}, &loc); err != nil || code != http.StatusOK {
		logger.Fatal("location lookup failed", "status", code, "err", err)
	}
	logger.Info("PASSED: location", "display", loc.Display)

	var outcome struct {
		Status      string   `json:"status"`
		ArtifactRef string   `json:"artifact_ref"`
		Mode        string   `json:"generation_mode"`
		Warnings    []string `json:"warnings"`
		Concepts    struct {
			Winner string `json:"winner"`
			Mode   string `json:"mode"`
		} `json:"concepts"`
	}
	code, err := call(client, http.MethodPost, *baseURL+"/cartoons", session, map[string]string{"manual_location": *place}, &outcome)
	if err != nil || code != http.StatusOK {
		logger.Fatal("cartoon request failed", "status", code, "err", err)
	}
	logger.Info("PASSED: cartoon",
		"ref", outcome.ArtifactRef,
		"winner", outcome.Concepts.Winner,
		"concepts", outcome.Concepts.Mode,
		"image", outcome.Mode,
		"warnings", len(outcome.Warnings),
	)
	if outcome.ArtifactRef == "" {
		logger.Fatal("cartoon was not stored", "warnings", outcome.Warnings)
	}

	resp, err := client.Get(*baseURL + "/cartoons/" + outcome.ArtifactRef + "/image")
	if err != nil {
		logger.Fatal("image download failed", "err", err)
	}
	defer resp.Body.Close()
	img, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		logger.Fatal("image download failed", "status", resp.StatusCode, "err", err)
	}
	logger.Info("PASSED: image", "bytes", len(img), "type", resp.Header.Get("Content-Type"))

	if *out != "" {
		if err := os.WriteFile(*out, img, 0o644); err != nil {
			logger.Fatal("failed to write image", "path", *out, "err", err)
		}
		logger.Info("image written", "path", *out)
	}
}

func call(client *http.Client, method, url, session string, payload, out any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", session)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("unexpected response: %s", data)
	}
	return resp.StatusCode, json.Unmarshal(data, out)
}
