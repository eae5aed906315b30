package report

// Schema is the JSON Schema (Draft 2020-12) for scry's analysis JSON
// output. It documents the structure returned by WriteJSON.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/scry/analysis-report.schema.json",
  "title": "Scry Analysis Report",
  "description": "Output schema for scry analyze --format=json",
  "type": "object",
  "required": ["version", "modules"],
  "properties": {
    "version": {
      "type": "string",
      "description": "Report schema version (semver)"
    },
    "modules": {
      "type": "array",
      "items": { "$ref": "#/$defs/ModuleReport" }
    },
    "errors": {
      "oneOf": [
        { "type": "array", "items": { "type": "string" } },
        { "type": "null" }
      ],
      "description": "Project-level errors (missing application modules, etc.)"
    }
  },
  "$defs": {
    "ModuleReport": {
      "type": "object",
      "required": ["module", "functions"],
      "properties": {
        "module": {
          "type": "string",
          "description": "Module name"
        },
        "functions": {
          "type": "array",
          "items": { "$ref": "#/$defs/FunctionReport" }
        }
      }
    },
    "FunctionReport": {
      "type": "object",
      "required": ["mfa", "effect", "terminates"],
      "properties": {
        "mfa": {
          "type": "string",
          "description": "Module.name/arity identifier"
        },
        "effect": {
          "type": "string",
          "description": "Compact effect tag (p, l, e, d, s, n, u), with payload",
          "pattern": "^(p|l|n|u|e(\\(.*\\))?|d(\\(.*\\))?|s(\\(.*\\))?)$"
        },
        "exceptions": {
          "oneOf": [
            { "type": "array", "items": { "type": "string" } },
            { "type": "null" }
          ],
          "description": "Statically-known exception tags this function can raise"
        },
        "dynamic_exceptions": {
          "type": "boolean",
          "description": "True if this function may raise an exception whose tag could not be statically determined"
        },
        "terminates": {
          "type": "boolean",
          "description": "False only if a known non-terminating callee was reached"
        },
        "errors": {
          "oneOf": [
            { "type": "array", "items": { "type": "string" } },
            { "type": "null" }
          ],
          "description": "Non-fatal per-function inference errors"
        }
      }
    }
  }
}`
