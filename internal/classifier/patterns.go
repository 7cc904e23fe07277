package classifier

// DefaultPatterns returns the built-in pattern table, grouped critical
// to safe, ported in full from the reference implementation's pattern
// tables (CRITICAL_PATTERNS/HIGH_PATTERNS/MEDIUM_PATTERNS/LOW_PATTERNS/
// SAFE_PATTERNS). The fork-bomb pattern is a corrected, fully escaped
// regex — the reference implementation's version contains unescaped
// metacharacters that make it partly a stray capture group instead of a
// literal match; this table fixes that rather than reproducing it.
func DefaultPatterns() []RiskPattern {
	return []RiskPattern{
		// CRITICAL - always blocked
		MustRegexPattern(`rm\s+(-[rfRF]+\s+)*(/|/\*|"\s*/\s*"|'\s*/\s*')(\s|$)`, CRITICAL, "Recursive delete of root filesystem"),
		MustRegexPattern(`rm\s+(-[rfRF]+\s+)*~(\s|$|/)`, CRITICAL, "Recursive delete of home directory"),
		MustRegexPattern(`mkfs\.`, CRITICAL, "Filesystem format command"),
		MustRegexPattern(`dd\s+.*of=/dev/(sd|hd|nvme|vd)[a-z]`, CRITICAL, "Direct disk write"),
		MustRegexPattern(`:\s*\(\s*\)\s*\{\s*:\s*\|\s*:\s*&\s*\}\s*;`, CRITICAL, "Fork bomb pattern"),
		MustRegexPattern(`>\s*/dev/(sd|hd|nvme|vd)[a-z]`, CRITICAL, "Redirect to disk device"),
		MustRegexPattern(`chmod\s+(-[rR]+\s+)*777\s+/(\s|$)`, CRITICAL, "Set world-writable permissions on root"),
		MustRegexPattern(`chown\s+(-[rR]+\s+)*\S+:\S+\s+/(\s|$)`, CRITICAL, "Change ownership of root filesystem"),

		// HIGH - require approval
		MustRegexPattern(`rm\s+(-[rfRF]+)`, HIGH, "Recursive/force delete"),
		MustRegexPattern(`^sudo\s+`, HIGH, "Privileged command execution"),
		MustRegexPattern(`(useradd|userdel|usermod)\s+`, HIGH, "User account modification"),
		MustRegexPattern(`(groupadd|groupdel|groupmod)\s+`, HIGH, "Group modification"),
		MustRegexPattern(`systemctl\s+(stop|disable|mask)\s+`, HIGH, "Service stop/disable"),
		MustRegexPattern(`service\s+\S+\s+(stop|restart)`, HIGH, "Service management"),
		MustRegexPattern(`iptables\s+`, HIGH, "Firewall modification"),
		MustRegexPattern(`ufw\s+(disable|delete|reset)`, HIGH, "Firewall modification"),
		MustRegexPattern(`chmod\s+(-[rR]+\s+)*777\s+`, HIGH, "Set world-writable permissions"),
		MustRegexPattern(`>\s*/etc/`, HIGH, "Write to system config"),
		MustRegexPattern(`kill\s+-9\s+`, HIGH, "Force kill process"),
		MustRegexPattern(`pkill\s+-9\s+`, HIGH, "Force kill processes by name"),
		MustRegexPattern(`\b(shutdown|reboot|poweroff|halt)\b`, HIGH, "System shutdown/reboot"),

		// MEDIUM - may need approval based on policy
		MustRegexPattern(`(apt|apt-get|yum|dnf|pacman|brew)\s+(install|remove|purge)`, MEDIUM, "Package management"),
		MustRegexPattern(`pip\s+install\s+`, MEDIUM, "Python package installation"),
		MustRegexPattern(`npm\s+(install|uninstall)\s+(-g|--global)`, MEDIUM, "Global npm package management"),
		MustRegexPattern(`\|\s*(bash|sh|zsh|python|perl|ruby)`, MEDIUM, "Pipe to shell interpreter"),
		MustRegexPattern(`curl\s+.*\|\s*`, MEDIUM, "Download and pipe"),
		MustRegexPattern(`wget\s+.*\|\s*`, MEDIUM, "Download and pipe"),
		MustRegexPattern(`eval\s+`, MEDIUM, "Dynamic command evaluation"),
		MustRegexPattern(`crontab\s+`, MEDIUM, "Cron job modification"),
		MustRegexPattern(`ssh\s+`, MEDIUM, "Remote shell access"),
		MustRegexPattern(`scp\s+`, MEDIUM, "Remote file transfer"),
		MustRegexPattern(`rsync\s+.*:`, MEDIUM, "Remote sync"),
		MustRegexPattern(`git\s+push\s+`, MEDIUM, "Push to remote repository"),
		MustRegexPattern(`git\s+push\s+.*--force`, HIGH, "Force push to repository"),
		MustRegexPattern(`docker\s+rm\s+`, MEDIUM, "Docker container removal"),
		MustRegexPattern(`docker\s+system\s+prune`, MEDIUM, "Docker system cleanup"),

		// LOW - generally safe but have side effects
		MustRegexPattern(`^(touch|mkdir|cp|mv)\s+`, LOW, "File/directory creation or move"),
		MustRegexPattern(`git\s+(add|commit|checkout|branch|merge)`, LOW, "Git local operations"),
		MustRegexPattern(`npm\s+install(\s|$)`, LOW, "Local npm install"),
		MustRegexPattern(`pip\s+install\s+.*-e\s+\.`, LOW, "Local pip editable install"),
		MustRegexPattern(`echo\s+.*>`, LOW, "Write to file"),

		// SAFE - read-only operations
		MustRegexPattern(`^(ls|dir|pwd|whoami|hostname|date|cal|uptime)`, SAFE, "Read-only system info"),
		MustRegexPattern(`^(cat|head|tail|less|more|bat)\s+`, SAFE, "File viewing"),
		MustRegexPattern(`^(grep|rg|ag|ack|find|fd|locate)\s+`, SAFE, "Search operations"),
		MustRegexPattern(`^(wc|sort|uniq|diff|comm)\s+`, SAFE, "Text processing"),
		MustRegexPattern(`^(ps|top|htop|pgrep|lsof)`, SAFE, "Process viewing"),
		MustRegexPattern(`^(df|du|free|vmstat|iostat)`, SAFE, "System monitoring"),
		MustRegexPattern(`^(git\s+(status|log|diff|show|branch))`, SAFE, "Git read operations"),
		MustRegexPattern(`^(docker\s+(ps|images|logs))`, SAFE, "Docker read operations"),
		MustRegexPattern(`^(python|python3|node|ruby)\s+.*--version`, SAFE, "Version check"),
		MustRegexPattern(`^echo\s+[^>]*$`, SAFE, "Echo without redirect"),
		MustRegexPattern(`^(which|whereis|type|file)\s+`, SAFE, "Command lookup"),
		MustRegexPattern(`^man\s+`, SAFE, "Manual page"),
		MustRegexPattern(`^(env|printenv|set)(\s|$)`, SAFE, "Environment listing"),
	}
}
