package extraction

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"github.com/davidchanit/receipt-scanner-backend/domain"
	"github.com/davidchanit/receipt-scanner-backend/pkg/extraction/parser"
)

type visionExtractor struct {
	service *vision.Service
}

// NewVisionExtractor builds the OCR-vision backend from service-account
// credentials. All three credential fields are required; the composition
// root skips this backend when any is absent.
func NewVisionExtractor(ctx context.Context, projectID, privateKey, clientEmail string) (Extractor, error) {
	if projectID == "" || privateKey == "" || clientEmail == "" {
		return nil, errors.New("incomplete google cloud credentials")
	}

	credentials, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   projectID,
		"private_key":  privateKey,
		"client_email": clientEmail,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		return nil, fmt.Errorf("building credentials: %w", err)
	}

	service, err := vision.NewService(ctx,
		option.WithCredentialsJSON(credentials),
		option.WithScopes(vision.CloudPlatformScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating vision service: %w", err)
	}

	return &visionExtractor{service: service}, nil
}

func (e *visionExtractor) Name() string {
	return BackendOCRVision
}

// Extract runs remote text detection and hands the recognized text to the
// heuristic parser. Only the remote call itself can fail; an empty
// detection result parses into the documented defaults.
func (e *visionExtractor) Extract(ctx context.Context, image []byte, contentType string) (domain.ParsedReceipt, error) {
	request := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{
			{
				Image: &vision.Image{
					Content: base64.StdEncoding.EncodeToString(image),
				},
				Features: []*vision.Feature{
					{Type: "TEXT_DETECTION"},
				},
			},
		},
	}

	response, err := e.service.Images.Annotate(request).Context(ctx).Do()
	if err != nil {
		return domain.ParsedReceipt{}, fmt.Errorf("vision annotate: %w", err)
	}

	text := ""
	if len(response.Responses) > 0 {
		annotation := response.Responses[0]
		if annotation.Error != nil {
			return domain.ParsedReceipt{}, fmt.Errorf("vision annotate: %s", annotation.Error.Message)
		}
		if annotation.FullTextAnnotation != nil {
			text = annotation.FullTextAnnotation.Text
		} else if len(annotation.TextAnnotations) > 0 {
			text = annotation.TextAnnotations[0].Description
		}
	}

	return parser.Parse(text), nil
}
