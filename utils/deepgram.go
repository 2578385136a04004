package utils

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	listenapi "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/rest"
	speakapi "github.com/deepgram/deepgram-go-sdk/pkg/api/speak/v1/rest"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces"
	listen "github.com/deepgram/deepgram-go-sdk/pkg/client/listen"
	speak "github.com/deepgram/deepgram-go-sdk/pkg/client/speak"
)

// SpeechClient bundles Deepgram's prerecorded transcription and speech
// synthesis REST APIs behind one client.
type SpeechClient struct {
	stt *listenapi.Client
	tts *speakapi.Client
}

func NewSpeechClient() *SpeechClient {
	apiKey := os.Getenv("DEEPGRAM_API_KEY")
	if apiKey == "" {
		log.Error("DEEPGRAM_API_KEY environment variable not set")
	}

	sttClient := listen.NewREST(apiKey, &interfaces.ClientOptions{})
	ttsClient := speak.NewREST(apiKey, &interfaces.ClientOptions{})

	return &SpeechClient{
		stt: listenapi.New(sttClient),
		tts: speakapi.New(ttsClient),
	}
}

// Transcribe runs one prerecorded transcription over the uploaded audio and
// returns the best alternative with its confidence.
func (s *SpeechClient) Transcribe(ctx context.Context, audio []byte) (string, float64, error) {
	options := &interfaces.PreRecordedTranscriptionOptions{
		Model:       "nova-2",
		SmartFormat: true,
		Language:    "en",
	}

	res, err := s.stt.FromStream(ctx, bytes.NewReader(audio), options)
	if err != nil {
		return "", 0, fmt.Errorf("transcription request failed: %w", err)
	}

	if res.Results == nil || len(res.Results.Channels) == 0 || len(res.Results.Channels[0].Alternatives) == 0 {
		return "", 0, fmt.Errorf("no transcription alternatives in response")
	}

	alternative := res.Results.Channels[0].Alternatives[0]
	transcript := strings.TrimSpace(alternative.Transcript)
	if transcript == "" {
		return "", 0, fmt.Errorf("empty transcript in response")
	}

	log.Debug("Transcription completed, confidence: ", alternative.Confidence)
	return transcript, alternative.Confidence, nil
}

// Synthesize renders the response text as MP3 audio.
func (s *SpeechClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	options := &interfaces.SpeakOptions{
		Model: "aura-asteria-en",
	}

	buf := new(interfaces.RawResponse)
	if _, err := s.tts.ToStream(ctx, text, options, buf); err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}

	if buf.Len() == 0 {
		return nil, fmt.Errorf("no audio data in synthesis response")
	}
	return buf.Bytes(), nil
}

// IsTextLengthExceeded reports whether a synthesis error was caused by the
// input text exceeding the service limit, the only synthesis failure that
// gets a truncate-and-retry.
func IsTextLengthExceeded(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "length") ||
		strings.Contains(msg, "too long") ||
		strings.Contains(msg, "character limit")
}
