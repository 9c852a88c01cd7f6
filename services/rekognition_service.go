package services

import (
	"context"
	"fmt"

	"nutriportions/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// LabelDetector is the part of the Rekognition client the analyzer uses.
type LabelDetector interface {
	DetectLabels(ctx context.Context, in *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// RekognitionAnalyzer labels the photo with Rekognition and estimates one
// catalog serving for every label that names a food bank item.
type RekognitionAnalyzer struct {
	client LabelDetector
	foods  *FoodBankService
}

func NewRekognitionAnalyzer(client LabelDetector, foods *FoodBankService) *RekognitionAnalyzer {
	return &RekognitionAnalyzer{client: client, foods: foods}
}

func (r *RekognitionAnalyzer) Name() string { return "rekognition" }

func (r *RekognitionAnalyzer) Analyze(ctx context.Context, img *utils.DecodedImage) ([]ItemEstimate, []byte, error) {
	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: img.Data},
		MaxLabels:     aws.Int32(15),
		MinConfidence: aws.Float32(75),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("detect labels: %w", err)
	}

	labels := make([]string, 0, len(out.Labels))
	var items []ItemEstimate
	seen := make(map[uint]bool)
	for _, l := range out.Labels {
		name := aws.ToString(l.Name)
		labels = append(labels, name)
		if len(items) == MaxAnalyzedItems {
			continue
		}
		food, err := r.foods.FindByName(name)
		if err != nil {
			return nil, nil, err
		}
		if food == nil || seen[food.ID] {
			continue
		}
		seen[food.ID] = true
		p := utils.PerServing(food)
		items = append(items, ItemEstimate{
			Name:           food.Name,
			Quantity:       "1 " + string(utils.MeasureServing),
			Grams:          food.GramsPerSingleItem,
			Calories:       p.Kcal,
			Portions:       &utils.MacroPortions{Protein: p.Protein, Carbs: p.Carb, Fats: p.Fat},
			Category:       food.Category,
			CategoryImage:  food.ImgURL,
			FoundInCatalog: true,
		})
	}
	raw, _ := json.Marshal(map[string]any{"labels": labels})
	return items, raw, nil
}
