package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"
)

func createTextReport(allTableValues []TableValues) (out []byte, err error) {
	var sb strings.Builder
	for _, tableValues := range allTableValues {
		sb.WriteString(fmt.Sprintf("%s\n", tableValues.Name))
		sb.WriteString(strings.Repeat("=", len(tableValues.Name)))
		sb.WriteString("\n")
		if tableValues.Rows() == 0 {
			msg := noDataFound
			if tableValues.NoDataFound != "" {
				msg = tableValues.NoDataFound
			}
			sb.WriteString(msg + "\n\n")
			continue
		}
		sb.WriteString(DefaultTextTableRendererFunc(tableValues))
		sb.WriteString("\n")
	}
	out = []byte(sb.String())
	return
}

func DefaultTextTableRendererFunc(tableValues TableValues) string {
	var sb strings.Builder
	if tableValues.HasRows { // print the field names as column headings across the top of the table
		// find the longest item per column -- can be the field name (column header) or a value
		maxFieldLen := make([]int, len(tableValues.Fields))
		for i, field := range tableValues.Fields {
			// the last column shouldn't occupy more space than the value
			if i == len(tableValues.Fields)-1 {
				continue
			}
			maxFieldLen[i] = len(field.Name)
			for _, val := range field.Values {
				maxFieldLen[i] = max(maxFieldLen[i], len(val))
			}
		}
		columnSpacing := 3
		writeRow := func(cell func(int) string) {
			var line strings.Builder
			for i := range tableValues.Fields {
				line.WriteString(fmt.Sprintf("%-*s", maxFieldLen[i]+columnSpacing, cell(i)))
			}
			sb.WriteString(strings.TrimRight(line.String(), " ") + "\n")
		}
		writeRow(func(i int) string { return tableValues.Fields[i].Name })
		writeRow(func(i int) string { return strings.Repeat("-", len(tableValues.Fields[i].Name)) })
		for row := range tableValues.Rows() {
			writeRow(func(i int) string { return tableValues.Fields[i].Values[row] })
		}
	} else {
		// get the longest field name to format the table nicely
		maxFieldNameLen := 0
		for _, field := range tableValues.Fields {
			maxFieldNameLen = max(maxFieldNameLen, len(field.Name))
		}
		// print the field names followed by their value
		for _, field := range tableValues.Fields {
			var value string
			if len(field.Values) > 0 {
				value = field.Values[0]
			}
			sb.WriteString(fmt.Sprintf("%s%-*s %s\n", field.Name, maxFieldNameLen-len(field.Name)+1, ":", value))
		}
	}
	return sb.String()
}
