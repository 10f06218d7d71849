package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/danmuck/colonies/pkg/core"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

// render prints v as json, or as a table built by rows.
func render(v any, header []string, rows func() [][]string) error {
	if flags.Output == outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	data := pterm.TableData{header}
	data = append(data, rows()...)
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func done(format string, args ...any) {
	if flags.Output == outputJSON {
		return
	}
	pterm.Success.Println(fmt.Sprintf(format, args...))
}

func renderColonies(colonies []core.Colony) error {
	return render(colonies, []string{"NAME", "ID"}, func() [][]string {
		rows := make([][]string, 0, len(colonies))
		for _, c := range colonies {
			rows = append(rows, []string{c.Name, c.ColonyID})
		}
		return rows
	})
}

func executorState(state int) string {
	switch state {
	case core.PENDING:
		return "pending"
	case core.APPROVED:
		return "approved"
	case core.REJECTED:
		return "rejected"
	default:
		return strconv.Itoa(state)
	}
}

func renderExecutors(executors []core.Executor) error {
	return render(executors, []string{"NAME", "TYPE", "STATE", "LOCATION", "LAST HEARD"}, func() [][]string {
		rows := make([][]string, 0, len(executors))
		for _, e := range executors {
			rows = append(rows, []string{e.ExecutorName, e.ExecutorType, executorState(e.State), e.LocationName, e.LastHeardFromTime})
		}
		return rows
	})
}

func renderProcesses(processes []core.Process) error {
	return render(processes, []string{"ID", "FUNC", "STATE", "EXECUTOR TYPE", "SUBMITTED"}, func() [][]string {
		rows := make([][]string, 0, len(processes))
		for _, p := range processes {
			rows = append(rows, []string{p.ProcessID, p.Spec.FuncName, core.StateName(p.State), p.Spec.Conditions.ExecutorType, p.SubmissionTime})
		}
		return rows
	})
}

func renderProcess(p core.Process) error {
	return render(p, []string{"FIELD", "VALUE"}, func() [][]string {
		out, _ := json.Marshal(p.Output)
		return [][]string{
			{"id", p.ProcessID},
			{"func", p.Spec.FuncName},
			{"args", fmt.Sprint(p.Spec.Args)},
			{"state", core.StateName(p.State)},
			{"executor", p.AssignedExecutorID},
			{"graph", p.ProcessGraphID},
			{"output", string(out)},
			{"errors", fmt.Sprint(p.Errors)},
		}
	})
}

func renderGraph(g core.ProcessGraph) error {
	return render(g, []string{"FIELD", "VALUE"}, func() [][]string {
		return [][]string{
			{"id", g.ProcessGraphID},
			{"colony", g.ColonyName},
			{"state", core.StateName(g.State)},
			{"roots", fmt.Sprint(g.RootProcessIDs)},
			{"processes", fmt.Sprint(g.ProcessIDs)},
		}
	})
}

func renderLogs(logs []core.Log) error {
	return render(logs, []string{"PROCESS", "EXECUTOR", "MESSAGE"}, func() [][]string {
		rows := make([][]string, 0, len(logs))
		for _, l := range logs {
			rows = append(rows, []string{l.ProcessID, l.ExecutorName, l.Message})
		}
		return rows
	})
}

func renderEntries(entries []core.ChannelEntry) error {
	return render(entries, []string{"SEQ", "TYPE", "REPLY TO", "DATA"}, func() [][]string {
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{strconv.FormatInt(e.Sequence, 10), e.Type, strconv.FormatInt(e.InReplyTo, 10), e.Data})
		}
		return rows
	})
}

func renderFunctions(funcs []core.Function) error {
	return render(funcs, []string{"FUNC", "EXECUTOR", "TYPE", "CALLS", "AVG EXEC"}, func() [][]string {
		rows := make([][]string, 0, len(funcs))
		for _, f := range funcs {
			rows = append(rows, []string{f.FuncName, f.ExecutorName, f.ExecutorType, strconv.FormatInt(f.Counter, 10), strconv.FormatFloat(f.AvgExecTime, 'f', 3, 64)})
		}
		return rows
	})
}

func renderBlueprints(bps []core.Blueprint) error {
	return render(bps, []string{"NAME", "KIND", "HANDLER", "GENERATION", "RECONCILED"}, func() [][]string {
		rows := make([][]string, 0, len(bps))
		for _, b := range bps {
			rows = append(rows, []string{b.Metadata.Name, b.Kind, b.Handler.ExecutorType, strconv.FormatInt(b.Generation, 10), strconv.FormatBool(b.Reconciled())})
		}
		return rows
	})
}

func renderDefinitions(defs []core.BlueprintDefinition) error {
	return render(defs, []string{"NAME", "KIND", "EXECUTOR TYPE"}, func() [][]string {
		rows := make([][]string, 0, len(defs))
		for _, d := range defs {
			rows = append(rows, []string{d.Name, d.Kind, d.ExecutorType})
		}
		return rows
	})
}

func renderStats(s core.Statistics) error {
	return render(s, []string{"", "WAITING", "RUNNING", "SUCCESSFUL", "FAILED"}, func() [][]string {
		return [][]string{
			{"processes", strconv.Itoa(s.WaitingProcesses), strconv.Itoa(s.RunningProcesses), strconv.Itoa(s.SuccessfulProcesses), strconv.Itoa(s.FailedProcesses)},
			{"workflows", strconv.Itoa(s.WaitingWorkflows), strconv.Itoa(s.RunningWorkflows), strconv.Itoa(s.SuccessfulWorkflows), strconv.Itoa(s.FailedWorkflows)},
		}
	})
}
