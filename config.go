package main

const ENV_X_API_KEY = "x_api_key"
const ENV_X_API_KEY_SECRET = "x_api_key_secret"
const ENV_X_ACCESS_TOKEN = "x_access_token"
const ENV_X_ACCESS_TOKEN_SECRET = "x_access_token_secret"
const ENV_PROXY_DSN = "proxy_dsn"
const ENV_LEDGER_DATABASE_PATH = "ledger_database_path"
const ENV_TELEGRAM_API_KEY = "telegram_api_key"
const ENV_TELEGRAM_ADMIN_CHAT_ID = "tg_admin_chat_id"
const ENV_INTER_POST_DELAY_MS = "inter_post_delay_ms"

const SERVER_NAME = "postx"
const SERVER_VERSION = "1.0.0"

const DEFAULT_LEDGER_DATABASE_PATH = "postx.db"

const SERVER_INSTRUCTIONS = "X (Twitter) posting server. Use post_tweet to post a single tweet, post_thread to post a thread, or get_me to verify credentials."

// Tool name constants
const TOOL_POST_TWEET = "post_tweet"
const TOOL_POST_THREAD = "post_thread"
const TOOL_GET_ME = "get_me"
