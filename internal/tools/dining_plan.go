package tools

import (
	"context"

	"diningagent/internal/diningplan"
)

// DiningPlanToolName is the bound name of the dining-plan tool.
const DiningPlanToolName = "create_dining_plan"

// Planner derives dining-plan text.
type Planner interface {
	Derive(ctx context.Context, req diningplan.Request) string
}

// DiningPlan exposes the deriver as a tool.
type DiningPlan struct {
	planner Planner
}

// NewDiningPlan wraps planner.
func NewDiningPlan(planner Planner) *DiningPlan {
	return &DiningPlan{planner: planner}
}

func (p *DiningPlan) Definition() Definition {
	return Definition{
		Name:        DiningPlanToolName,
		Description: "Create a dining plan with menu items and bill estimate for a restaurant.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"restaurant_name": {Type: "string", Description: "Name of the restaurant."},
				"restaurant_url":  {Type: "string", Description: "Direct menu URL, if known.", Default: ""},
			},
			Required: []string{"restaurant_name"},
		},
	}
}

func (p *DiningPlan) Execute(ctx context.Context, args map[string]any) string {
	return p.planner.Derive(ctx, diningplan.Request{
		RestaurantName: stringArg(args, "restaurant_name"),
		RestaurantURL:  stringArg(args, "restaurant_url"),
	})
}
