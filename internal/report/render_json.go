package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/json"

	"gopkg.in/yaml.v2"
)

// records turns a table into one record per row, fields in table order.
func records(tableValues TableValues) []yaml.MapSlice {
	var oTable []yaml.MapSlice
	for recordIdx := range tableValues.Rows() {
		var oRecord yaml.MapSlice
		for _, field := range tableValues.Fields {
			oRecord = append(oRecord, yaml.MapItem{Key: field.Name, Value: field.Values[recordIdx]})
		}
		oTable = append(oTable, oRecord)
	}
	return oTable
}

func createJsonReport(allTableValues []TableValues) (out []byte, err error) {
	type outRecord map[string]string
	type outTable []outRecord
	type outReport map[string]outTable
	oReport := make(outReport)
	for _, tableValues := range allTableValues {
		oTable := outTable{}
		for _, record := range records(tableValues) {
			oRecord := make(outRecord)
			for _, item := range record {
				oRecord[item.Key.(string)] = item.Value.(string)
			}
			oTable = append(oTable, oRecord)
		}
		oReport[tableValues.Name] = oTable
	}
	return json.MarshalIndent(oReport, "", " ")
}

// the yaml report keeps table and field order
func createYamlReport(allTableValues []TableValues) (out []byte, err error) {
	var oReport yaml.MapSlice
	for _, tableValues := range allTableValues {
		oTable := records(tableValues)
		if oTable == nil {
			oTable = []yaml.MapSlice{}
		}
		oReport = append(oReport, yaml.MapItem{Key: tableValues.Name, Value: oTable})
	}
	return yaml.Marshal(oReport)
}
