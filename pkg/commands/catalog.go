package commands

import (
	"encoding/json"
	"net/http"
)

func get(name, path string, query ...string) Command {
	return Command{Name: name, Method: http.MethodGet, Path: path, Query: query}
}

func post(name, path string) Command {
	return Command{Name: name, Method: http.MethodPost, Path: path}
}

func put(name, path, bodyArg string) Command {
	return Command{Name: name, Method: http.MethodPut, Path: path, BodyArg: bodyArg}
}

func postBody(name, path, bodyArg string) Command {
	return Command{Name: name, Method: http.MethodPost, Path: path, BodyArg: bodyArg}
}

func postFields(name, path string, fields ...Field) Command {
	return Command{Name: name, Method: http.MethodPost, Path: path, Fields: fields}
}

func required(arg string) Field {
	return Field{Arg: arg}
}

// configSection registers the get, update and reset trio shared by every
// settings area of the backend.
func configSection(area, path string) []Command {
	return []Command{
		get("get_"+area+"_config", path),
		put("update_"+area+"_config", path, "config"),
		post("reset_"+area+"_config", path+"/reset"),
	}
}

var catalog = build(
	[]Command{get("health_check", "/health")},

	// Setup wizard.
	[]Command{
		postFields("validate_folder", "/api/wizard/validate-folder",
			Field{Arg: "path", Key: "folder_path"},
			Field{Arg: "recursive", Default: json.RawMessage("true")},
		),
		postBody("scan_folder", "/api/wizard/scan-folder", "params"),
		postBody("analyze_wizard_profile", "/api/wizard/analyze-profile", "params"),
		postBody("complete_wizard", "/api/wizard/complete", "params"),
		get("detect_environment", "/api/wizard/environment-detection"),
		get("get_current_profile", "/api/wizard/current-profile"),
	},

	// Ingestion.
	[]Command{
		get("get_setup_status", "/api/ingestion/setup-status"),
		get("get_documents", "/api/ingestion/documents"),
		put("update_document_metadata", "/api/ingestion/documents/{id}/metadata", "metadata"),
		post("analyze_documents", "/api/ingestion/analyze"),
		get("get_analysis_progress", "/api/ingestion/analyze/progress"),
		postFields("start_ingestion", "/api/ingestion/start",
			Field{Arg: "incremental", Default: json.RawMessage("false")},
		),
		post("pause_ingestion", "/api/ingestion/pause"),
		post("resume_ingestion", "/api/ingestion/resume"),
		post("cancel_ingestion", "/api/ingestion/cancel"),
		get("get_ingestion_status", "/api/ingestion/status"),
		get("detect_changes", "/api/ingestion/changes"),
		get("get_ingestion_history", "/api/ingestion/history", "limit"),
		get("get_ingestion_log", "/api/ingestion/log", "version"),
		post("restore_ingestion_version", "/api/ingestion/history/{version}/restore"),
		get("get_general_settings", "/api/ingestion/settings/general"),
		put("update_general_settings", "/api/ingestion/settings/general", "settings"),
	},
	configSection("ingestion", "/api/ingestion/config"),

	// Chunking.
	configSection("chunking", "/api/chunking/config"),
	[]Command{
		postBody("validate_chunking_config", "/api/chunking/config/validate", "config"),
		postFields("preview_chunking", "/api/chunking/preview", required("document_id")),
		postFields("preview_chunking_custom", "/api/chunking/preview/custom",
			required("document_id"), required("config"),
		),
	},

	// Embedding.
	configSection("embedding", "/api/embedding/config"),
	[]Command{
		postFields("store_secret", "/api/embedding/secrets/store", required("key_name"), required("value")),
		postFields("secret_exists", "/api/embedding/secrets/exists", required("key_name")),
		postFields("delete_secret", "/api/embedding/secrets/delete", required("key_name")),
		{
			Name:   "test_embedding_connection",
			Method: http.MethodPost,
			Path:   "/api/embedding/test-connection",
			Query:  []string{"provider", "model"},
		},
		postFields("test_embedding", "/api/embedding/test-embedding", required("text_a"), required("text_b")),
		get("get_embedding_environment", "/api/embedding/environment"),
		get("get_available_models", "/api/embedding/models", "provider"),
		get("get_embedding_cache_stats", "/api/embedding/cache/stats"),
		post("clear_embedding_cache", "/api/embedding/cache/clear"),
	},

	// Vector store.
	configSection("vector_store", "/api/vector-store/config"),
	[]Command{
		post("test_vector_store_connection", "/api/vector-store/test-connection"),
		get("get_vector_store_collection_stats", "/api/vector-store/collection/stats"),
		{Name: "delete_vector_store_collection", Method: http.MethodDelete, Path: "/api/vector-store/collection/delete"},
	},

	// Retrieval.
	configSection("semantic_search", "/api/retrieval/semantic/config"),
	configSection("lexical_search", "/api/retrieval/lexical/config"),
	configSection("hybrid_search", "/api/retrieval/hybrid/config"),
	[]Command{
		postFields("run_semantic_search", "/api/retrieval/semantic/search", required("query")),
		postBody("run_semantic_search_with_options", "/api/retrieval/semantic/search", "payload"),
		get("get_search_filter_values", "/api/search/filters/values", "field"),
		postBody("lexical_search", "/api/search/lexical", "query"),
		get("get_bm25_index_stats", "/api/retrieval/lexical/index/stats"),
		post("rebuild_bm25_index", "/api/retrieval/lexical/index/rebuild"),
		postBody("unified_search", "/api/search", "query"),
	},

	// Reranking.
	configSection("rerank", "/api/rerank/config"),
	[]Command{
		post("test_rerank_connection", "/api/rerank/test-connection"),
		postBody("test_rerank", "/api/rerank/test", "query"),
		get("get_rerank_models", "/api/rerank/models", "provider"),
	},

	// Language model and agents.
	configSection("llm", "/api/llm/config"),
	[]Command{
		post("test_llm_connection", "/api/llm/test-connection"),
		get("get_llm_models", "/api/llm/models", "provider"),
	},
	configSection("agents", "/api/agents/config"),

	// Chat.
	[]Command{
		get("get_chat_ready", "/api/chat/ready"),
		postBody("chat", "/api/chat", "query"),
		post("new_conversation", "/api/chat/new"),
		get("get_conversation_history", "/api/chat/history"),
	},
)

func build(groups ...[]Command) map[string]Command {
	m := make(map[string]Command)
	for _, group := range groups {
		for _, cmd := range group {
			if _, dup := m[cmd.Name]; dup {
				panic("commands: duplicate command " + cmd.Name)
			}
			m[cmd.Name] = cmd
		}
	}
	return m
}
