package utils

import (
	"context"
	"fmt"

	"github.com/Perceptus-Labs/perceptus-coach/models"
	"github.com/pinecone-io/go-pinecone/pinecone"
	"google.golang.org/protobuf/types/known/structpb"
)

const embeddingModel = "text-embedding-ada-002"

// GetPineconeIndex connects to the coaching-notes namespace of one user.
func GetPineconeIndex(ctx context.Context, pineconeAPIKey, indexName, userID string) (*pinecone.IndexConnection, error) {
	if userID == "" {
		return nil, fmt.Errorf("a user id is required to open coaching notes")
	}
	if indexName == "" {
		return nil, fmt.Errorf("pinecone index name is not configured")
	}
	if pineconeAPIKey == "" {
		return nil, fmt.Errorf("pinecone API key is not configured")
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: pineconeAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Pinecone client: %w", err)
	}

	idx, err := client.DescribeIndex(ctx, indexName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe index %q: %w", indexName, err)
	}

	namespace := fmt.Sprintf("coach-%s", userID)
	idxConnection, err := client.Index(pinecone.NewIndexConnParams{Host: idx.Host, Namespace: namespace})
	if err != nil {
		return nil, fmt.Errorf("failed to create IndexConnection for Host %v: %w", idx.Host, err)
	}

	return idxConnection, nil
}

// RememberRecommendations stores each recommendation of a finished session so
// later sessions can bring them back up.
func RememberRecommendations(ctx context.Context, index *pinecone.IndexConnection, embedKey string, report models.SessionReport) error {
	var vectors []*pinecone.Vector
	for i, rec := range report.Result.Recommendations {
		embedding, err := VectorizePrompt(ctx, embedKey, embeddingModel, rec)
		if err != nil {
			return fmt.Errorf("error vectorizing recommendation: %w", err)
		}
		metadata, err := structpb.NewStruct(map[string]interface{}{
			"text":       rec,
			"session_id": report.ID,
			"modality":   string(report.Modality),
			"score":      report.Result.OverallScore,
			"timestamp":  report.EndTime.Unix(),
		})
		if err != nil {
			return fmt.Errorf("error building metadata: %w", err)
		}
		vectors = append(vectors, &pinecone.Vector{
			Id:       fmt.Sprintf("%s-rec-%d", report.ID, i),
			Values:   embedding,
			Metadata: metadata,
		})
	}
	if len(vectors) == 0 {
		return nil
	}

	if _, err := index.UpsertVectors(ctx, vectors); err != nil {
		return fmt.Errorf("error upserting to Pinecone: %w", err)
	}
	return nil
}

// RecallTips returns earlier recommendations most related to promptText.
func RecallTips(ctx context.Context, index *pinecone.IndexConnection, embedKey, promptText string, topK int) ([]string, error) {
	embedding, err := VectorizePrompt(ctx, embedKey, embeddingModel, promptText)
	if err != nil {
		return nil, fmt.Errorf("error vectorizing prompt: %w", err)
	}
	return QueryPinecone(ctx, embedding, index, topK)
}

func QueryPinecone(ctx context.Context, embedding []float32, index *pinecone.IndexConnection, topK int) ([]string, error) {
	queryResponse, err := index.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          embedding,
		TopK:            uint32(topK),
		IncludeValues:   false,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("error querying Pinecone index: %w", err)
	}

	seen := make(map[string]bool)
	var matches []string
	for _, match := range queryResponse.Matches {
		if match.Vector == nil || match.Vector.Metadata == nil {
			continue
		}
		value, ok := match.Vector.Metadata.Fields["text"]
		if !ok {
			continue
		}
		text := value.GetStringValue()
		if text != "" && !seen[text] {
			seen[text] = true
			matches = append(matches, text)
		}
	}

	return matches, nil
}
