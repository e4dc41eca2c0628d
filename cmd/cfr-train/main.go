// Command cfr-train trains equilibrium strategies for the bundled
// example games and renders or exports the resulting average
// strategies.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/alecthomas/kong"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"

	cfr "github.com/EastChord/Counterfactual-Regret-Minimization"
	"github.com/EastChord/Counterfactual-Regret-Minimization/kuhn"
	"github.com/EastChord/Counterfactual-Regret-Minimization/liardie"
	"github.com/EastChord/Counterfactual-Regret-Minimization/matrixgame"
)

var cli struct {
	Verbosity int `help:"glog verbosity level" short:"v" default:"0"`

	RPS     RPSCmd     `cmd:"" name:"rps" help:"train the simultaneous-move Rock-Paper-Scissors variant"`
	Kuhn    KuhnCmd    `cmd:"" help:"train Kuhn poker with tree-walking CFR"`
	LiarDie LiarDieCmd `cmd:"" name:"liardie" help:"train Liar Die with two-pass FSICFR"`
}

type RPSCmd struct {
	Iterations int   `help:"number of training iterations" default:"100000"`
	Sample     bool  `help:"sample joint actions instead of exact expected-utility updates"`
	Seed       int64 `help:"random seed for --sample runs" default:"1"`
}

type KuhnCmd struct {
	Iterations   int    `help:"number of training iterations" default:"100000"`
	SampleChance bool   `help:"sample the deal each iteration instead of enumerating all deals"`
	Seed         int64  `help:"random seed for --sample-chance runs" default:"1"`
	CFRPlus      bool   `help:"use CFR+ regret matching"`
	Linear       bool   `help:"use linear strategy weighting"`
	Out          string `help:"write average strategies as CSV to this path"`
}

type LiarDieCmd struct {
	Sides      int    `help:"number of die faces" default:"6"`
	Iterations int    `help:"number of training iterations" default:"100000"`
	Seed       int64  `help:"random seed for the per-iteration die rolls" default:"1"`
	FullAvg    bool   `help:"keep the full strategy average instead of resetting halfway"`
	Out        string `help:"write average strategies as CSV to this path"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("cfr-train"),
		kong.Description("counterfactual regret minimization training for small games"),
		kong.UsageOnError(),
	)

	// glog registers its flags on the standard flag set; route logs to
	// stderr and apply the requested verbosity.
	flag.Set("logtostderr", "true")
	flag.Set("v", fmt.Sprint(cli.Verbosity))
	flag.CommandLine.Parse(nil)

	if err := ctx.Run(); err != nil {
		glog.Exitf("%v", err)
	}
}

func (cmd *RPSCmd) Run() error {
	var trainer *matrixgame.Trainer
	var err error
	if cmd.Sample {
		trainer, err = matrixgame.NewSampled(matrixgame.RockPaperScissors(), cmd.Seed)
	} else {
		trainer, err = matrixgame.New(matrixgame.RockPaperScissors())
	}
	if err != nil {
		return err
	}

	if err := trainer.Train(cmd.Iterations); err != nil {
		return err
	}

	pterm.Info.Printfln("average utility: player 0 %+.4f, player 1 %+.4f",
		trainer.AverageUtility(0), trainer.AverageUtility(1))

	data := pterm.TableData{append([]string{"player"}, matrixgame.RPSActionNames...)}
	for player := 0; player < 2; player++ {
		avg := trainer.AverageStrategy(player)
		data = append(data, []string{
			fmt.Sprint(player),
			fmt.Sprintf("%.4f", avg[matrixgame.Rock]),
			fmt.Sprintf("%.4f", avg[matrixgame.Paper]),
			fmt.Sprintf("%.4f", avg[matrixgame.Scissors]),
		})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func (cmd *KuhnCmd) Run() error {
	policies := cfr.NewPolicyTable(cfr.DiscountParams{
		UseRegretMatchingPlus: cmd.CFRPlus,
		LinearWeighting:       cmd.Linear,
	})

	type runner interface {
		Run(node cfr.GameTreeNode) float64
	}
	var engine runner = cfr.NewVanilla(policies)
	if cmd.SampleChance {
		engine = cfr.NewChanceSampling(policies, rand.New(rand.NewSource(cmd.Seed)))
	}

	root := kuhn.NewGame()
	var totalValue float64
	logEvery := cmd.Iterations / 10
	for i := 1; i <= cmd.Iterations; i++ {
		totalValue += engine.Run(root)
		if logEvery > 0 && i%logEvery == 0 {
			glog.Infof("iteration %d/%d: average game value %.4f",
				i, cmd.Iterations, totalValue/float64(i))
		}
	}

	pterm.Info.Printfln("player 0 average game value: %.4f (equilibrium value -1/18 = %.4f)",
		totalValue/float64(cmd.Iterations), -1.0/18.0)

	data := pterm.TableData{{"infoset", "check", "bet"}}
	policies.VisitSorted(func(key string, avg []float64) {
		data = append(data, []string{key, fmt.Sprintf("%.4f", avg[0]), fmt.Sprintf("%.4f", avg[1])})
	})
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}

	if cmd.Out != "" {
		return writeCSV(cmd.Out, policies.VisitSorted)
	}
	return nil
}

func (cmd *LiarDieCmd) Run() error {
	trainer, err := liardie.New(liardie.Config{
		Sides:           cmd.Sides,
		Seed:            cmd.Seed,
		KeepFullAverage: cmd.FullAvg,
	})
	if err != nil {
		return err
	}

	if err := trainer.Train(cmd.Iterations); err != nil {
		return err
	}

	data := pterm.TableData{{"roll", "opening claim probabilities (1.." + fmt.Sprint(cmd.Sides) + ")"}}
	for roll := 1; roll <= cmd.Sides; roll++ {
		data = append(data, []string{fmt.Sprint(roll), formatProbs(trainer.InitialClaimStrategy(roll))})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}

	data = pterm.TableData{{"my claim", "opp claim", "doubt", "accept"}}
	for myClaim := 0; myClaim < cmd.Sides; myClaim++ {
		for oppClaim := myClaim + 1; oppClaim <= cmd.Sides; oppClaim++ {
			avg := trainer.ResponseStrategy(myClaim, oppClaim)
			accept := "-"
			if len(avg) > liardie.Accept {
				accept = fmt.Sprintf("%.4f", avg[liardie.Accept])
			}
			data = append(data, []string{
				fmt.Sprint(myClaim), fmt.Sprint(oppClaim),
				fmt.Sprintf("%.4f", avg[liardie.Doubt]), accept,
			})
		}
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}

	if cmd.Out != "" {
		return writeCSV(cmd.Out, trainer.VisitSorted)
	}
	return nil
}

func formatProbs(probs []float64) string {
	s := ""
	for i, p := range probs {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%.3f", p)
	}
	return s
}

func writeCSV(path string, walk cfr.StrategyWalker) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	if err := cfr.WriteStrategyCSV(f, walk); err != nil {
		return err
	}

	glog.Infof("wrote average strategies to %s", path)
	return nil
}
