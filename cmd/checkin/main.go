package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/stationhop/backend-go/internal/api"
	"github.com/stationhop/backend-go/internal/checkin"
	appconfig "github.com/stationhop/backend-go/internal/config"
	"github.com/stationhop/backend-go/internal/ledger"
	"github.com/stationhop/backend-go/internal/match"
	"github.com/stationhop/backend-go/internal/models"
	"github.com/stationhop/backend-go/internal/ocr"
	"github.com/stationhop/backend-go/internal/registry"
	"github.com/stationhop/backend-go/pkg/http/client"
)

var (
	cfg           *appconfig.Config
	pipelineCfg   *appconfig.PipelineConfig
	ocrClient     *ocr.Client
	visitLedger   ledger.Ledger
	registryCache *registry.Cache
	resolverCache *match.ResolverCache
	catalogLoader *registry.S3Loader
	setupOnce     sync.Once
	setupErr      error
)

func init() {
	setupOnce.Do(func() {
		cfg = appconfig.LoadFromEnv()
		cfg.InitializeLogging()

		pipelineCfg = appconfig.GetPipelineConfig()
		if err := pipelineCfg.Validate(); err != nil {
			setupErr = err
			log.Error().Err(err).Msg("Invalid pipeline configuration")
			return
		}

		ctx := context.Background()

		s3Client, err := registry.NewS3Client(ctx)
		if err != nil {
			setupErr = err
			log.Error().Err(err).Msg("Creating S3 client")
			return
		}
		catalogLoader = registry.NewS3Loader(s3Client, cfg.CatalogBucket, cfg.CatalogKey)
		registryCache = registry.NewCache(0)
		resolverCache = match.NewResolverCache(match.ResolverConfig{
			ScoreFloor:           pipelineCfg.MatchScoreFloor,
			RelaxedScoreFloor:    pipelineCfg.RelaxedScoreFloor,
			DisambiguationMargin: pipelineCfg.DisambiguationMargin,
			MaxSuggestions:       pipelineCfg.MaxSuggestions,
			LRUSize:              pipelineCfg.ResolutionLRUSize,
		})

		if os.Getenv("LEDGER_BACKEND") == "memory" {
			visitLedger = ledger.NewMemory()
		} else {
			dynamoClient, err := ledger.NewDynamoClient(ctx)
			if err != nil {
				setupErr = err
				log.Error().Err(err).Msg("Creating DynamoDB client")
				return
			}
			visitLedger = ledger.NewDynamo(dynamoClient, cfg.LedgerTable)
		}

		ocrClient = ocr.NewClient(client.New(client.Options{
			BaseURL:    cfg.OCRBaseURL,
			Timeout:    cfg.HTTPTimeout,
			MaxRetries: cfg.MaxRetries,
		}))

		log.Info().Str("env", cfg.Environment).Msg("Check-in handler initialized")
	})
}

// checkInRequest is the Lambda request body. Exactly one of ImageRef or OCR
// supplies the recognition result. PickedStationID re-enters at Resolve with
// a user-chosen suggestion; AcceptPending re-enters at Persist after a
// geofence failure.
type checkInRequest struct {
	ActivityID      string                  `json:"activityId"`
	ImageRef        string                  `json:"imageRef,omitempty"`
	OCR             *models.OCRResult       `json:"ocr,omitempty"`
	Location        *models.Coordinates     `json:"location,omitempty"`
	PickedStationID string                  `json:"pickedStationId,omitempty"`
	AcceptPending   bool                    `json:"acceptPending,omitempty"`
	Resolved        *models.ResolvedStation `json:"resolvedStation,omitempty"`
	Outcome         *models.GeofenceOutcome `json:"geofenceOutcome,omitempty"`
}

func buildPipeline(ctx context.Context) (*checkin.Pipeline, error) {
	reg := registryCache.Get()
	if reg == nil {
		loaded, err := catalogLoader.Load(ctx)
		if err != nil {
			return nil, err
		}
		registryCache.Set(loaded)
		reg = loaded
	}

	// the memoized resolver keeps the matcher's LRU warm across invocations
	resolver, err := resolverCache.For(reg)
	if err != nil {
		return nil, err
	}
	return checkin.New(reg, resolver, visitLedger, pipelineCfg), nil
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if setupErr != nil {
		return api.Error("Service misconfigured", http.StatusInternalServerError)
	}

	var req checkInRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return api.Error("Malformed request body", http.StatusBadRequest)
	}
	if req.ActivityID == "" {
		return api.Error("Missing activityId", http.StatusBadRequest)
	}

	pipeline, err := buildPipeline(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Building pipeline")
		return api.Error("Station catalog unavailable", http.StatusServiceUnavailable)
	}

	pReq := checkin.Request{
		ActivityID:     req.ActivityID,
		DeviceLocation: req.Location,
	}

	// Pending acceptance re-enters at Persist without touching OCR.
	if req.AcceptPending {
		if req.Resolved == nil {
			return api.Error("acceptPending requires resolvedStation", http.StatusBadRequest)
		}
		result, cerr := pipeline.PersistPending(ctx, pReq, *req.Resolved, req.Outcome)
		if cerr != nil {
			return api.CheckInError(cerr)
		}
		return api.Success(api.NewCheckInResponse(*result))
	}

	// A picked suggestion re-enters at Geofence without re-running OCR.
	if req.PickedStationID != "" {
		result, cerr := pipeline.ResolveDirect(ctx, pReq, req.PickedStationID)
		if cerr != nil {
			return api.CheckInError(cerr)
		}
		return api.Success(api.NewCheckInResponse(*result))
	}

	switch {
	case req.OCR != nil:
		pReq.OCR = *req.OCR
	case req.ImageRef != "":
		result, err := ocrClient.Recognize(ctx, req.ImageRef)
		if err != nil {
			log.Warn().Err(err).Msg("OCR collaborator failed")
			return api.Error("OCR unavailable", http.StatusBadGateway)
		}
		pReq.OCR = *result
	default:
		return api.Error("Missing ocr or imageRef", http.StatusBadRequest)
	}

	result, cerr := pipeline.CheckIn(ctx, pReq)
	if cerr != nil {
		return api.CheckInError(cerr)
	}
	return api.Success(api.NewCheckInResponse(*result))
}

func main() {
	lambda.Start(handleRequest)
}
