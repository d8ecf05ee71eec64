// SPDX-License-Identifier: MPL-2.0

package nest

// RequiredTasks returns the sibling re-mapping tasks that must complete before the target
// can be nested: every remapJar task of kind remap_jar owned by a declared project
// dependency, in declaration order. A project declared twice contributes its tasks once.
func RequiredTasks(cfg IncludeConfig) []Task {
	var tasks []Task
	seen := make(map[string]struct{})
	for _, dep := range cfg.Declared {
		if dep.Kind != KindProject {
			continue
		}
		for _, t := range dep.Project.TasksNamed(RemapJarTaskName) {
			if t.Kind != TaskKindRemapJar {
				continue
			}
			if _, ok := seen[t.String()]; ok {
				continue
			}
			seen[t.String()] = struct{}{}
			tasks = append(tasks, t)
		}
	}
	return tasks
}
