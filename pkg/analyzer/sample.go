package analyzer

// SamplePodDescription is kubectl describe output for a pod stuck in
// CrashLoopBackOff with failing readiness probes. It backs the "Load Sample
// Data" action of the presentation layer.
const SamplePodDescription = `Name:         my-app-5d4b7c8f9b-xyz12
Namespace:    default
Priority:     0
Node:         node-1/10.0.1.100
Start Time:   Sat, 07 Jun 2025 10:30:00 +0000
Labels:       app=my-app
Annotations:  <none>
Status:       Running
IP:           10.244.1.15
IPs:
  IP:  10.244.1.15
Controlled By:  ReplicaSet/my-app-5d4b7c8f9b
Containers:
  my-app:
    Container ID:   docker://abc123def456
    Image:          my-app:v1.0.0
    Image ID:       docker-pullable://my-app@sha256:abc123
    Port:           8080/TCP
    Host Port:      0/TCP
    State:          Waiting
      Reason:       CrashLoopBackOff
    Last State:     Terminated
      Reason:       Error
      Exit Code:    1
      Started:      Sat, 07 Jun 2025 10:35:00 +0000
      Finished:     Sat, 07 Jun 2025 10:35:30 +0000
    Ready:          False
    Restart Count:  8
    Limits:
      cpu:     100m
      memory:  128Mi
    Requests:
      cpu:        100m
      memory:     128Mi
    Liveness:     http-get http://:8080/health delay=30s timeout=5s period=10s #success=1 #failure=3
    Readiness:    http-get http://:8080/ready delay=5s timeout=5s period=5s #success=1 #failure=3
    Environment:  <none>
    Mounts:
      /var/run/secrets/kubernetes.io/serviceaccount from default-token-abc123 (ro)
Conditions:
  Type              Status
  Initialized       True
  Ready             False
  ContainersReady   False
  PodScheduled      True
Volumes:
  default-token-abc123:
    Type:        Secret (a volume populated by a Secret)
    SecretName:  default-token-abc123
    Optional:    false
QoS Class:       Guaranteed
Node-Selectors:  <none>
Tolerations:     node.kubernetes.io/not-ready:NoExecute op=Exists for 300s
                 node.kubernetes.io/unreachable:NoExecute op=Exists for 300s
Events:
  Type     Reason     Age                   From               Message
  ----     ------     ----                  ----               -------
  Normal   Scheduled  10m                   default-scheduler  Successfully assigned default/my-app-5d4b7c8f9b-xyz12 to node-1
  Normal   Pulled     8m (x4 over 10m)      kubelet            Container image "my-app:v1.0.0" already present on machine
  Normal   Created    8m (x4 over 10m)      kubelet            Created container my-app
  Normal   Started    8m (x4 over 10m)      kubelet            Started container my-app
  Warning  Unhealthy  7m (x12 over 9m)      kubelet            Readiness probe failed: Get "http://10.244.1.15:8080/ready": dial tcp 10.244.1.15:8080: connection refused
  Warning  BackOff    4m (x20 over 8m)      kubelet            Back-off restarting failed container`
