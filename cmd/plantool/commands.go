package main

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/dshills/quantaplan/internal/catalog"
	"github.com/dshills/quantaplan/internal/log"
	"github.com/dshills/quantaplan/internal/sql/planner"
)

func (t *tool) readPlan(name string) (planner.Node, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	node, err := planner.FromJSON(data, t.cfg.ToDecodeOptions(t.logger))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return node, nil
}

// treeInputOIDs unions the input columns of every scan in the tree.
func treeInputOIDs(root planner.Node) *planner.ColumnOIDSet {
	set := planner.NewColumnOIDSet()
	stack := []planner.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if scan, ok := n.(planner.ScanNode); ok {
			scan.CollectInputOIDs().Each(set.Add)
		}
		stack = append(stack, n.Children()...)
	}
	return set
}

// inspectCommand prints a summary and the EXPLAIN tree of each plan.
type inspectCommand struct {
	tool        *tool
	files       *[]string
	catalogFile *string
}

func (cmd *inspectCommand) run(_ *kingpin.ParseContext) error {
	var resolver catalog.Resolver
	if *cmd.catalogFile != "" {
		cat, err := catalog.LoadFixture(*cmd.catalogFile)
		if err != nil {
			return err
		}
		resolver = cat
	}

	for _, name := range *cmd.files {
		node, err := cmd.tool.readPlan(name)
		if err != nil {
			cmd.tool.logger.Error("inspect failed", log.String("file", name), log.Any("error", err))
			return err
		}
		fmt.Fprintf(cmd.tool.out, "%s: %s hash=%016x\n", name, node.PlanNodeType(), node.Hash())
		fmt.Fprintf(cmd.tool.out, "input oids: %s\n", treeInputOIDs(node))
		fmt.Fprint(cmd.tool.out, planner.Explain(node, resolver, cmd.tool.cfg.ToExplainOptions()))
		cmd.tool.logger.Info("inspected plan", log.String("file", name), log.String("type", node.PlanNodeType().String()))
	}
	return nil
}

func addInspectCommand(app *kingpin.Application, t *tool) {
	cmd := &inspectCommand{tool: t}
	inspect := app.Command("inspect", "Print type, hash, input columns and EXPLAIN output for each plan.").Action(cmd.run)
	cmd.catalogFile = inspect.Flag("catalog", "JSON or YAML catalog fixture used to resolve object names.").ExistingFile()
	cmd.files = inspect.Arg("file", "Plan documents to inspect.").Required().ExistingFiles()
}

// verifyCommand checks that each plan survives a serialization round trip.
type verifyCommand struct {
	tool  *tool
	files *[]string
}

func (cmd *verifyCommand) run(_ *kingpin.ParseContext) error {
	failed := 0
	for _, name := range *cmd.files {
		start := time.Now()
		if err := cmd.verify(name); err != nil {
			failed++
			fmt.Fprintf(cmd.tool.out, "FAIL %s: %v\n", name, err)
			cmd.tool.logger.Error("verification failed", log.String("file", name), log.Any("error", err))
			continue
		}
		fmt.Fprintf(cmd.tool.out, "ok   %s\n", name)
		log.Latency(start, "verify")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d plans failed verification", failed, len(*cmd.files))
	}
	return nil
}

func (cmd *verifyCommand) verify(name string) error {
	first, err := cmd.tool.readPlan(name)
	if err != nil {
		return err
	}
	encoded, err := first.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	second, err := planner.FromJSON(encoded, cmd.tool.cfg.ToDecodeOptions(cmd.tool.logger))
	if err != nil {
		return fmt.Errorf("failed to decode re-encoded plan: %w", err)
	}
	if !first.Equal(second) {
		return fmt.Errorf("re-decoded plan is not equal to the original")
	}
	if first.Hash() != second.Hash() {
		return fmt.Errorf("hash changed across round trip: %016x != %016x", first.Hash(), second.Hash())
	}
	reencoded, err := second.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	if !bytes.Equal(encoded, reencoded) {
		return fmt.Errorf("encoding is not stable across round trip")
	}
	return nil
}

func addVerifyCommand(app *kingpin.Application, t *tool) {
	cmd := &verifyCommand{tool: t}
	verify := app.Command("verify", "Decode, re-encode and re-decode each plan and check equality and hash agreement.").Action(cmd.run)
	cmd.files = verify.Arg("file", "Plan documents to verify.").Required().ExistingFiles()
}

// hashCommand prints the structural hash of each plan.
type hashCommand struct {
	tool  *tool
	files *[]string
}

func (cmd *hashCommand) run(_ *kingpin.ParseContext) error {
	for _, name := range *cmd.files {
		node, err := cmd.tool.readPlan(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.tool.out, "%016x  %s\n", node.Hash(), name)
	}
	cmd.tool.logger.Info("hashed plans", log.Int("files", len(*cmd.files)))
	return nil
}

func addHashCommand(app *kingpin.Application, t *tool) {
	cmd := &hashCommand{tool: t}
	hash := app.Command("hash", "Print the structural hash of each plan.").Action(cmd.run)
	cmd.files = hash.Arg("file", "Plan documents to hash.").Required().ExistingFiles()
}
