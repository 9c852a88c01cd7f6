package main

import (
	"fmt"

	"nutriportions/services"
	"nutriportions/utils"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	servingsFoodID   uint
	servingsMeasure  string
	servingsQuantity float64
)

var servingsCmd = &cobra.Command{
	Use:   "servings",
	Short: "Show the portions of a quantity of a food bank item",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			p, err := services.NewFoodBankService(db).Preview(servingsFoodID, servingsMeasure, servingsQuantity)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %.2f servings\n", p.Food.Name, p.Servings)
			fmt.Fprintln(out, "KCAL\tPROTEIN\tCARB\tFAT\tVEG\tFRUIT")
			fmt.Fprintf(out, "%.1f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
				p.Portions.Kcal, p.Portions.Protein, p.Portions.Carb, p.Portions.Fat, p.Portions.Veg, p.Portions.Fruit)
			return nil
		})
	},
}

var (
	macroCalories float64
	macroProtein  float64
	macroCarbs    float64
	macroFat      float64
)

var portionsCmd = &cobra.Command{
	Use:   "portions",
	Short: "Convert calories and macro grams into portion units",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := utils.PortionsFromMacros(macroCalories, macroProtein, macroCarbs, macroFat)
		fmt.Fprintf(cmd.OutOrStdout(), "protein=%.1f carbs=%.1f fats=%.1f\n", p.Protein, p.Carbs, p.Fats)
		return nil
	},
}

var (
	bfGender string
	bfAge    int
	bfWeight float64
	bfFolds  utils.Skinfolds
)

var bodyfatCmd = &cobra.Command{
	Use:   "bodyfat",
	Short: "Estimate body fat from four skinfolds",
	RunE: func(cmd *cobra.Command, args []string) error {
		bc, err := utils.AssessBodyComposition(bfGender, bfAge, bfWeight, bfFolds)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "body_fat=%.1f%% fat_mass=%.2fkg lean_mass=%.2fkg density=%.4f\n",
			bc.FatPercent, bc.FatMass, bc.LeanMass, bc.Density)
		return nil
	},
}

func init() {
	servingsCmd.Flags().UintVar(&servingsFoodID, "food", 0, "Food bank item id")
	servingsCmd.Flags().StringVar(&servingsMeasure, "measure", "serving", "serving, grams, unit, cup or tbsp")
	servingsCmd.Flags().Float64Var(&servingsQuantity, "quantity", 1, "Quantity in the chosen measure")
	_ = servingsCmd.MarkFlagRequired("food")

	portionsCmd.Flags().Float64Var(&macroCalories, "calories", 0, "Calories")
	portionsCmd.Flags().Float64Var(&macroProtein, "protein", 0, "Protein grams")
	portionsCmd.Flags().Float64Var(&macroCarbs, "carbs", 0, "Carbohydrate grams")
	portionsCmd.Flags().Float64Var(&macroFat, "fat", 0, "Fat grams")

	bodyfatCmd.Flags().StringVar(&bfGender, "gender", "", "male or female")
	bodyfatCmd.Flags().IntVar(&bfAge, "age", 0, "Age in years")
	bodyfatCmd.Flags().Float64Var(&bfWeight, "weight", 0, "Body weight in kg")
	bodyfatCmd.Flags().Float64Var(&bfFolds.Biceps, "biceps", 0, "Biceps skinfold (mm)")
	bodyfatCmd.Flags().Float64Var(&bfFolds.Triceps, "triceps", 0, "Triceps skinfold (mm)")
	bodyfatCmd.Flags().Float64Var(&bfFolds.Subscapular, "subscapular", 0, "Subscapular skinfold (mm)")
	bodyfatCmd.Flags().Float64Var(&bfFolds.Suprailiac, "suprailiac", 0, "Suprailiac skinfold (mm)")

	rootCmd.AddCommand(servingsCmd, portionsCmd, bodyfatCmd)
}
