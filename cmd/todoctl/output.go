package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"taskList/internal/client"
	"taskList/internal/handlers/dto"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

type renderFunc func(w io.Writer, view client.View) error

type listing struct {
	Tasks []dto.TaskResponse `json:"tasks" yaml:"tasks"`
	Stats client.Stats       `json:"stats" yaml:"stats"`
}

func renderer(format string) (renderFunc, error) {
	switch format {
	case "table":
		return renderTable, nil
	case "json":
		return renderJSON, nil
	case "yaml":
		return renderYAML, nil
	default:
		return nil, fmt.Errorf("неизвестный формат вывода %q", format)
	}
}

func newListing(view client.View) listing {
	tasks := view.Tasks()
	if tasks == nil {
		tasks = []dto.TaskResponse{}
	}
	return listing{Tasks: tasks, Stats: view.Stats()}
}

func renderJSON(w io.Writer, view client.View) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newListing(view))
}

func renderYAML(w io.Writer, view client.View) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(newListing(view)); err != nil {
		return err
	}
	return encoder.Close()
}

func renderTable(w io.Writer, view client.View) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Статус", "Описание", "Создана"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)

	for _, t := range view.Tasks() {
		status := "[ ]"
		if t.Completed {
			status = "[x]"
		}
		table.Append([]string{
			strconv.FormatInt(t.ID, 10),
			status,
			t.Description,
			t.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}

	stats := view.Stats()
	table.SetFooter([]string{"", "", fmt.Sprintf("всего %d, в работе %d, выполнено %d", stats.Total, stats.Pending, stats.Completed), ""})
	table.Render()
	return nil
}
