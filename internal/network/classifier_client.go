package network

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"folivix/internal/providers"
	"folivix/internal/structures"
)

// PredictionResponse is the classification server's reply for one image.
type PredictionResponse struct {
	ClassName      string  `json:"className"`
	Confidence     float64 `json:"confidence"`
	ProcessingTime float64 `json:"processingTime"`
}

// ClassificationError carries a user-displayable message for any failed
// classification round-trip: transport error, non-2xx status or a payload
// the client could not make sense of.
type ClassificationError struct {
	Message string
	Err     error
}

func (e *ClassificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

type ClassifierClientInterface interface {
	Predict(ctx context.Context, image []byte) (*PredictionResponse, error)
}

// ClassifierClient talks to the remote inference service. The host is read
// from preferences on every call so a settings change applies without a
// restart; port and scheme are fixed by the server deployment. No retries:
// the user decides whether to resubmit.
type ClassifierClient struct {
	client *resty.Client
	prefs  providers.PrefsProviderInterface
	conf   *structures.Config
	logger providers.Logger
}

func NewClassifierClient(conf *structures.Config, prefs providers.PrefsProviderInterface, logger providers.Logger) ClassifierClientInterface {
	client := resty.New().
		SetTimeout(conf.Classifier.Timeout).
		SetHeader("Accept", "application/json")

	return &ClassifierClient{
		client: client,
		prefs:  prefs,
		conf:   conf,
		logger: logger,
	}
}

func (c *ClassifierClient) Predict(ctx context.Context, image []byte) (*PredictionResponse, error) {
	url := fmt.Sprintf("http://%s:%d/predict", c.prefs.ServerHost(), c.conf.Classifier.Port)

	var prediction PredictionResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetFileReader("image", "leaf.jpg", bytes.NewReader(image)).
		SetResult(&prediction).
		Post(url)
	if err != nil {
		c.logger.Errorf(providers.TypeApp, "Classification request failed: %s", err)
		return nil, &ClassificationError{Message: "could not reach the classification server", Err: err}
	}
	if !resp.IsSuccess() {
		c.logger.Errorf(providers.TypeApp, "Classification server returned %d", resp.StatusCode())
		return nil, &ClassificationError{Message: fmt.Sprintf("classification server returned status %d", resp.StatusCode())}
	}
	if prediction.ClassName == "" {
		return nil, &ClassificationError{Message: "classification server returned an unreadable response"}
	}

	c.logger.Infof(providers.TypeApp, "Classified as %s (%.2f) in %ss", prediction.ClassName, prediction.Confidence, formatSeconds(prediction.ProcessingTime))
	return &prediction, nil
}

func formatSeconds(seconds float64) string {
	return fmt.Sprintf("%.3f", seconds)
}
